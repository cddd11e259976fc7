package models

import "time"

// Payload is the raw source document retained alongside a Job, keyed by the
// same link. Purged once no Job references that link.
type Payload struct {
	ID        int64     `db:"id"`
	Link      string    `db:"link" validate:"required,url"`
	Payload   string    `db:"payload"`    // serialized source record (JSON or XML text)
	ExtraInfo string    `db:"extra_info"` // serialized secondary document, e.g. detail page HTML
	CreatedAt time.Time `db:"created_at"`
}

// SourceWatermark is a source's incremental fetch cursor. Uniqueness is on
// lower(Name); Name must belong to the registered source set.
type SourceWatermark struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name" validate:"required"`
	LastRunAt *time.Time `db:"last_run_at"`
}
