package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/config"
)

// captureSink records every entry it receives.
type captureSink struct {
	entries []*Entry
}

func (c *captureSink) Emit(e *Entry) error { c.entries = append(c.entries, e); return nil }
func (c *captureSink) Close() error        { return nil }
func (c *captureSink) Name() string        { return "capture" }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("anything-else"))
}

func TestFanout_FiltersBelowLevel(t *testing.T) {
	sink := &captureSink{}
	logger := newFanout(LevelWarn, []Sink{sink})

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	require.Len(t, sink.entries, 2)
	assert.Equal(t, "kept", sink.entries[0].Message)
	assert.Equal(t, LevelError, sink.entries[1].Level)
}

func TestFanout_FieldChainingDoesNotMutateParent(t *testing.T) {
	sink := &captureSink{}
	base := newFanout(LevelInfo, []Sink{sink})

	derived := base.WithField("source", "himalayas").WithFields(map[string]interface{}{"run": 7})
	derived.Info("from derived")
	base.Info("from base")

	require.Len(t, sink.entries, 2)
	assert.Equal(t, "himalayas", sink.entries[0].Fields["source"])
	assert.Equal(t, 7, sink.entries[0].Fields["run"])
	assert.Empty(t, sink.entries[1].Fields)
}

func TestFanout_CallSiteFieldsOverrideBoundFields(t *testing.T) {
	sink := &captureSink{}
	logger := newFanout(LevelInfo, []Sink{sink}).WithField("source", "remotive")

	logger.Info("overridden", map[string]interface{}{"source": "wellfound"})

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "wellfound", sink.entries[0].Fields["source"])
}

func TestRenderEntry_JSON(t *testing.T) {
	e := &Entry{
		Level:   LevelInfo,
		Message: "persisted jobs",
		Time:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Fields:  map[string]interface{}{"inserted": 3},
	}
	out, err := renderEntry(e, false, false)
	require.NoError(t, err)
	assert.Contains(t, out, `"message":"persisted jobs"`)
	assert.Contains(t, out, `"inserted":3`)
	assert.Contains(t, out, `"time":"2025-03-01T12:00:00Z"`)
}

func TestRenderEntry_TextSortsFields(t *testing.T) {
	e := &Entry{
		Level:   LevelWarn,
		Message: "retrying",
		Time:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Fields:  map[string]interface{}{"b": 2, "a": 1},
	}
	out, err := renderEntry(e, true, false)
	require.NoError(t, err)
	assert.Contains(t, out, "[WARN] retrying a=1 b=2")
}

func TestBuildSink_UnknownTypeErrors(t *testing.T) {
	_, err := buildSink(config.LogAdapterSpec{Name: "bad", Type: "nope", Enabled: true})
	assert.Error(t, err)
}

func TestFileSink_RotatesBySize(t *testing.T) {
	path := t.TempDir() + "/pipeline.log"
	sink, err := newFileSink("file", map[string]interface{}{
		"file_path": path,
		"max_size":  1, // every write after the first triggers rotation
	})
	require.NoError(t, err)
	defer sink.Close()

	e := &Entry{Level: LevelInfo, Message: "entry", Time: time.Now()}
	require.NoError(t, sink.Emit(e))
	require.NoError(t, sink.Emit(e))

	// One live file plus at least one rotation.
	assert.FileExists(t, path)
	assert.Greater(t, sink.written, int64(0))
	rotations, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.NotEmpty(t, rotations)
}
