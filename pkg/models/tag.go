package models

import "time"

// Tag is a normalized skill/category label. Uniqueness is on lower(Name).
// Tags are created on demand and never garbage-collected by the pipeline.
type Tag struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name" validate:"required"`
	CreatedAt time.Time `db:"created_at"`
}

// JobTag links a Job to a Tag. Unique on (JobID, TagID); deletes cascade
// from either side at the schema level.
type JobTag struct {
	JobID int64 `db:"job_id"`
	TagID int64 `db:"tag_id"`
}
