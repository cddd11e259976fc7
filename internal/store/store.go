// Package store persists canonical jobs, tags, and payloads to Postgres
// with batched conflict-do-nothing upserts, so re-ingesting the same
// listings is idempotent. It talks to the database through database/sql
// (driven by github.com/jackc/pgx/v5/stdlib) rather than pgx's native pool
// interface, so the store can be exercised in tests with
// github.com/DATA-DOG/go-sqlmock without a live database.
package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"boardsync/internal/logging"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

const (
	jobBatchSize     = 500
	payloadBatchSize = 200
)

// Store wraps a *sql.DB. Query paths run in read-only transactions; write
// paths in normal transactions with guaranteed commit-or-rollback.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

func New(db *sql.DB) *Store {
	return &Store{db: db, logger: logging.GetGlobalLogger()}
}

// withReadOnly runs fn inside a transaction opened with sql.TxOptions{ReadOnly: true},
// always rolling back since no writes are expected on this path.
func (s *Store) withReadOnly(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return utils.NewDatabaseError("failed to begin read-only transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Rollback()
}

// withReadWrite runs fn inside a transaction, committing on success and
// rolling back on any error (including a panic, via defer).
func (s *Store) withReadWrite(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return utils.NewDatabaseError("failed to commit transaction", err)
	}
	return nil
}

// ExistingLinks returns the subset of links (case-insensitively) already
// present in the jobs table, for the fetch orchestrator's dedup step.
func (s *Store) ExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	if len(links) == 0 {
		return map[string]bool{}, nil
	}

	lowered := make([]string, len(links))
	for i, l := range links {
		lowered[i] = strings.ToLower(l)
	}

	existing := map[string]bool{}
	err := s.withReadOnly(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT lower(link) FROM jobs WHERE lower(link) = ANY($1)`, pq(lowered))
		if err != nil {
			return utils.NewDatabaseError("failed to query existing links", err)
		}
		defer rows.Close()

		for rows.Next() {
			var link string
			if err := rows.Scan(&link); err != nil {
				return utils.NewDatabaseError("failed to scan existing link", err)
			}
			existing[link] = true
		}
		return rows.Err()
	})
	return existing, err
}

// UpsertJobs inserts jobs in batches of 500, on conflict by lower(link)
// doing nothing, returning the ids of rows actually inserted.
func (s *Store) UpsertJobs(ctx context.Context, jobs []*models.Job) ([]int64, error) {
	var insertedIDs []int64

	err := s.withReadWrite(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(jobs); start += jobBatchSize {
			end := start + jobBatchSize
			if end > len(jobs) {
				end = len(jobs)
			}
			batch := jobs[start:end]

			for _, job := range batch {
				if err := job.ValidateSalaryRange(); err != nil {
					return utils.NewDatabaseError("invalid salary range for "+job.Link, err)
				}

				var minAmount, maxAmount *string
				var minCurrency, maxCurrency *string
				if job.MinSalary != nil {
					a := job.MinSalary.Amount.String()
					minAmount = &a
					minCurrency = &job.MinSalary.Currency
				}
				if job.MaxSalary != nil {
					a := job.MaxSalary.Amount.String()
					maxAmount = &a
					maxCurrency = &job.MaxSalary.Currency
				}

				postedOn := job.PostedOn
				if postedOn.IsZero() {
					postedOn = time.Now().UTC()
				}

				var id int64
				row := tx.QueryRowContext(ctx, `
					INSERT INTO jobs
						(title, description, link, min_salary, min_salary_currency,
						 max_salary, max_salary_currency, posted_on, is_active,
						 is_remote, locations, company_name, created_at, edited_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9, $10, $11, now(), now())
					ON CONFLICT (lower(link)) DO NOTHING
					RETURNING id
				`, job.Title, job.Description, job.Link, minAmount, minCurrency,
					maxAmount, maxCurrency, postedOn, job.IsRemote, pq(job.Locations), job.CompanyName,
				)
				err := row.Scan(&id)
				if err == sql.ErrNoRows {
					continue // conflict: link already present
				}
				if err != nil {
					return utils.NewDatabaseError("failed to insert job "+job.Link, err)
				}
				job.ID = id
				insertedIDs = append(insertedIDs, id)
			}
		}
		return nil
	})

	return insertedIDs, err
}

// UpsertTags inserts tag names (deduplicated, normalized by callers before
// reaching here) and returns a name->id map covering every requested name,
// whether newly inserted or pre-existing.
func (s *Store) UpsertTags(ctx context.Context, names []string) (map[string]int64, error) {
	ids := map[string]int64{}
	if len(names) == 0 {
		return ids, nil
	}

	err := s.withReadWrite(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if _, ok := ids[name]; ok {
				continue
			}
			var id int64
			row := tx.QueryRowContext(ctx, `
				INSERT INTO tags (name, created_at) VALUES ($1, now())
				ON CONFLICT (lower(name)) DO UPDATE SET name = tags.name
				RETURNING id
			`, name)
			if err := row.Scan(&id); err != nil {
				return utils.NewDatabaseError("failed to upsert tag "+name, err)
			}
			ids[name] = id
		}
		return nil
	})
	return ids, err
}

// LinkJobTags inserts job_tag rows, ignoring ones that already exist.
func (s *Store) LinkJobTags(ctx context.Context, links []models.JobTag) error {
	if len(links) == 0 {
		return nil
	}
	return s.withReadWrite(ctx, func(tx *sql.Tx) error {
		for _, link := range links {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO job_tags (job_id, tag_id) VALUES ($1, $2)
				ON CONFLICT (job_id, tag_id) DO NOTHING
			`, link.JobID, link.TagID)
			if err != nil {
				return utils.NewDatabaseError("failed to link job/tag", err)
			}
		}
		return nil
	})
}

// UpsertPayloads inserts raw payloads in batches of 200, on conflict by
// lower(link) doing nothing.
func (s *Store) UpsertPayloads(ctx context.Context, payloads []*models.Payload) error {
	return s.withReadWrite(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(payloads); start += payloadBatchSize {
			end := start + payloadBatchSize
			if end > len(payloads) {
				end = len(payloads)
			}
			for _, p := range payloads[start:end] {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO payloads (link, payload, extra_info, created_at)
					VALUES ($1, $2, $3, now())
					ON CONFLICT (lower(link)) DO NOTHING
				`, p.Link, p.Payload, p.ExtraInfo)
				if err != nil {
					return utils.NewDatabaseError("failed to insert payload for "+p.Link, err)
				}
			}
		}
		return nil
	})
}

// Watermark loads a source's incremental cursor, creating a fresh (nil
// last_run_at) row on first run.
func (s *Store) Watermark(ctx context.Context, sourceName string) (*models.SourceWatermark, error) {
	var wm models.SourceWatermark
	err := s.withReadWrite(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, name, last_run_at FROM source_watermarks WHERE lower(name) = lower($1)
		`, sourceName)
		err := row.Scan(&wm.ID, &wm.Name, &wm.LastRunAt)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return utils.NewDatabaseError("failed to load watermark", err)
		}

		insertRow := tx.QueryRowContext(ctx, `
			INSERT INTO source_watermarks (name, last_run_at) VALUES ($1, NULL)
			RETURNING id, name, last_run_at
		`, sourceName)
		return insertRow.Scan(&wm.ID, &wm.Name, &wm.LastRunAt)
	})
	return &wm, err
}

// AdvanceWatermark sets a source's last_run_at to now, called only after a
// successful run.
func (s *Store) AdvanceWatermark(ctx context.Context, sourceName string, at time.Time) error {
	return s.withReadWrite(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE source_watermarks SET last_run_at = $1 WHERE lower(name) = lower($2)
		`, at, sourceName)
		if err != nil {
			return utils.NewDatabaseError("failed to advance watermark", err)
		}
		return nil
	})
}

// PurgeOldJobs deletes jobs older than retentionDays and any payload whose
// link no longer has a surviving job.
func (s *Store) PurgeOldJobs(ctx context.Context, retentionDays int) (jobsDeleted, payloadsDeleted int64, err error) {
	err = s.withReadWrite(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM jobs WHERE posted_on < now() - ($1 || ' days')::interval
		`, retentionDays)
		if err != nil {
			return utils.NewDatabaseError("failed to purge old jobs", err)
		}
		jobsDeleted, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `
			DELETE FROM payloads p
			WHERE NOT EXISTS (SELECT 1 FROM jobs j WHERE lower(j.link) = lower(p.link))
		`)
		if err != nil {
			return utils.NewDatabaseError("failed to purge orphaned payloads", err)
		}
		payloadsDeleted, _ = res.RowsAffected()
		return nil
	})
	return jobsDeleted, payloadsDeleted, err
}

// TaglessJobLinkTitleDescription is the projection the fill-missing-tags
// task batches through the LLM extractor.
type TaglessJobLinkTitleDescription struct {
	JobID       int64
	Link        string
	Title       string
	Description string
}

// JobsMissingTags selects active jobs with zero tag links, for the
// fill-missing-tags periodic task.
func (s *Store) JobsMissingTags(ctx context.Context, limit int) ([]TaglessJobLinkTitleDescription, error) {
	var out []TaglessJobLinkTitleDescription
	err := s.withReadOnly(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT j.id, j.link, j.title, j.description
			FROM jobs j
			WHERE j.is_active
			  AND NOT EXISTS (SELECT 1 FROM job_tags jt WHERE jt.job_id = j.id)
			LIMIT $1
		`, limit)
		if err != nil {
			return utils.NewDatabaseError("failed to query tagless jobs", err)
		}
		defer rows.Close()

		for rows.Next() {
			var j TaglessJobLinkTitleDescription
			if err := rows.Scan(&j.JobID, &j.Link, &j.Title, &j.Description); err != nil {
				return utils.NewDatabaseError("failed to scan tagless job", err)
			}
			out = append(out, j)
		}
		return rows.Err()
	})
	return out, err
}

// pq renders a string slice as a Postgres array literal, e.g. {"US","CA"}, so
// it can be bound as a single text[] parameter without a driver-specific
// array wrapper type.
func pq(values []string) string {
	if len(values) == 0 {
		return "{}"
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(escaped, ",") + "}"
}
