package publisher

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibleclock/bibleclock-server/internal/domain"
	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

type stubSource struct {
	rec   *domain.VerseRecord
	err   error
	calls int
}

func (s *stubSource) CurrentVerse(context.Context) (*domain.VerseRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.rec
	return &cp, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard, Format: "json"})
}

func sampleRecord(t *testing.T) *domain.VerseRecord {
	t.Helper()
	rec, err := domain.NewVerse("John", 3, 16, "For God so loved the world.")
	require.NoError(t, err)
	rec.Reference = "John 03:16"
	rec.Translation = "KJV"
	return rec
}

func TestPublishWritesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_verse.json")
	src := &stubSource{rec: sampleRecord(t)}

	p := New(src, path, testLogger())
	require.NoError(t, p.Publish(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "John 03:16", got["reference"])
	assert.Equal(t, "For God so loved the world.", got["text"])

	// No temp file left behind.
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestPublishReplacesPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_verse.json")
	src := &stubSource{rec: sampleRecord(t)}
	p := New(src, path, testLogger())

	require.NoError(t, p.Publish(context.Background()))

	src.rec.Reference = "John 03:17"
	require.NoError(t, p.Publish(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "John 03:17")
}

func TestPublishPropagatesSourceError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_verse.json")
	src := &stubSource{err: errors.Internal("boom")}
	p := New(src, path, testLogger())

	err := p.Publish(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed publish writes nothing")
}

func TestRunPublishesImmediatelyAndStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_verse.json")
	src := &stubSource{rec: sampleRecord(t)}
	p := New(src, path, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	assert.GreaterOrEqual(t, src.calls, 1)
}
