package fetch_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/fetch"
	"boardsync/internal/parser"
	"boardsync/internal/sources"
	"boardsync/internal/store"
	"boardsync/pkg/models"
)

type fakeRawItem struct {
	Link        string
	Title       string
	PostedOn    time.Time
	HasPostedOn bool
	Tags        []string
}

type fakeExtractor struct{}

func (fakeExtractor) GetLink(item any) (string, error) { return item.(fakeRawItem).Link, nil }
func (fakeExtractor) GetTitle(item any) string         { return item.(fakeRawItem).Title }
func (fakeExtractor) GetDescription(item any) string   { return "a description" }
func (fakeExtractor) GetPostedOn(item any) (time.Time, bool) {
	i := item.(fakeRawItem)
	return i.PostedOn, i.HasPostedOn
}
func (fakeExtractor) GetTags(item any) []string      { return item.(fakeRawItem).Tags }
func (fakeExtractor) GetIsRemote(item any) bool      { return true }
func (fakeExtractor) GetLocations(item any) []string { return nil }
func (fakeExtractor) GetCompanyName(item any) string { return "Acme" }
func (fakeExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	return nil, nil
}
func (fakeExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) { return "", nil }
func (fakeExtractor) DataFormat() parser.DataFormat                              { return parser.FormatJSON }

type fakeAdapter struct {
	name  string
	items []sources.RawItem
}

func (a *fakeAdapter) Name() string                     { return a.name }
func (a *fakeAdapter) BaseURL() string                  { return "https://x.example.com" }
func (a *fakeAdapter) DisplayName() string              { return "Fake Source" }
func (a *fakeAdapter) URL() string                      { return "https://x.example.com/api" }
func (a *fakeAdapter) APIDataFormat() parser.DataFormat { return parser.FormatJSON }
func (a *fakeAdapter) Extractor() parser.Extractor      { return fakeExtractor{} }
func (a *fakeAdapter) FetchJobs(ctx context.Context, cutoff time.Time) ([]sources.RawItem, error) {
	return a.items, nil
}

func newTestOrchestrator(t *testing.T, adapter sources.Adapter) (*fetch.Orchestrator, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := sources.NewRegistry()
	registry.Register(adapter)

	st := store.New(db)
	p := parser.New(&parser.SalaryParser{DefaultCurrency: "USD", DefaultLocale: "en_US"}, 24*time.Hour)
	return fetch.New(registry, st, p, 24*time.Hour), mock
}

func TestRun_UnknownSourceReturnsErrorWithoutTouchingStore(t *testing.T) {
	orch, mock := newTestOrchestrator(t, &fakeAdapter{name: "known"})
	_, err := orch.Run(context.Background(), "nope")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RecencyGateDedupAndPersistEndToEnd(t *testing.T) {
	now := time.Now().UTC()
	adapter := &fakeAdapter{
		name: "fakesource",
		items: []sources.RawItem{
			fakeRawItem{Link: "https://x.example.com/old", Title: "Old Role", PostedOn: now.Add(-48 * time.Hour), HasPostedOn: true},
			fakeRawItem{Link: "https://x.example.com/new", Title: "New Role", Tags: []string{"Go", "golang"}},
		},
	}
	orch, mock := newTestOrchestrator(t, adapter)

	// Watermark: no existing row, one is created.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, last_run_at FROM source_watermarks`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO source_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "last_run_at"}).
			AddRow(int64(1), "fakesource", nil))
	mock.ExpectCommit()

	// ExistingLinks: neither link present.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT lower\(link\)`).
		WillReturnRows(sqlmock.NewRows([]string{"lower"}))
	mock.ExpectRollback()

	// UpsertJobs: only the fresh item survives the recency gate.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	// persistTags: one normalized tag, linked to the inserted job.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tags`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO job_tags`).
		WithArgs(int64(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// UpsertPayloads.
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO payloads`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// AdvanceWatermark.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE source_watermarks SET last_run_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := orch.Run(context.Background(), "fakesource")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Kept)
	assert.Equal(t, 1, result.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ExistingLinkIsSkippedAsDuplicate(t *testing.T) {
	adapter := &fakeAdapter{
		name: "fakesource",
		items: []sources.RawItem{
			fakeRawItem{Link: "https://x.example.com/dup", Tags: nil},
		},
	}
	orch, mock := newTestOrchestrator(t, adapter)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, last_run_at FROM source_watermarks`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO source_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "last_run_at"}).
			AddRow(int64(1), "fakesource", nil))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT lower\(link\)`).
		WillReturnRows(sqlmock.NewRows([]string{"lower"}).AddRow("https://x.example.com/dup"))
	mock.ExpectRollback()

	// No job/payload/tag inserts expected: the only item is a duplicate.
	mock.ExpectBegin()
	mock.ExpectCommit() // UpsertJobs with an empty batch still opens/commits a transaction.

	mock.ExpectBegin()
	mock.ExpectCommit() // UpsertPayloads with an empty batch.

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE source_watermarks SET last_run_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := orch.Run(context.Background(), "fakesource")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Kept)
	assert.Equal(t, 0, result.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
