package akashic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/storage"
	"github.com/poiesic/akashic/stores/mock"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *mock.MockStore) {
	t.Helper()
	vec := mock.NewMockStore("vector")
	opts = append([]ServiceOption{WithVectorStore(vec), WithWorkers(2)}, opts...)
	svc, err := NewService(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, vec
}

func waitTerminal(t *testing.T, svc *Service, id core.ID) *core.Submission {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		sub, err := svc.Status(context.Background(), id)
		require.NoError(t, err)
		if sub.Status.Terminal() {
			return sub
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("submission %d never reached a terminal status", id)
	return nil
}

func TestServiceIngestText(t *testing.T) {
	svc, vec := newTestService(t)

	sub, err := svc.IngestText(context.Background(), "some knowledge", core.TargetVector, core.GraphNone)
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueued, sub.Status)
	assert.Equal(t, core.SourceText, sub.SourceName)

	final := waitTerminal(t, svc, sub.Id)
	assert.Equal(t, core.StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)

	calls := vec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "some knowledge", calls[0].Text)
}

func TestServiceIngestMarkdownFile(t *testing.T) {
	svc, vec := newTestService(t)

	sub, err := svc.IngestFile(context.Background(), "hello.md", []byte("Hello world"), core.TargetVector, core.GraphNone)
	require.NoError(t, err)
	assert.Equal(t, core.FormatMarkdown, sub.Format)

	final := waitTerminal(t, svc, sub.Id)
	assert.Equal(t, core.StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)

	calls := vec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Hello world", calls[0].Text)
}

func TestServiceIngestFileUnknownFormat(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.IngestFile(context.Background(), "archive.tar.gz", []byte("x"), core.TargetVector, core.GraphNone)
	assert.ErrorIs(t, err, core.ErrUnknownFormat)
}

func TestServiceGraphTargetWithoutAdapter(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.IngestText(context.Background(), "text", core.TargetGraph, core.GraphFalkorDB)
	require.NoError(t, err)

	final := waitTerminal(t, svc, sub.Id)
	assert.Equal(t, core.StatusFailed, final.Status)
	assert.Contains(t, final.ErrorDetail, "graph store not configured")
}

func TestServiceCancelTerminalRejected(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.IngestText(context.Background(), "text", core.TargetVector, core.GraphNone)
	require.NoError(t, err)
	waitTerminal(t, svc, sub.Id)

	_, err = svc.Cancel(context.Background(), sub.Id)
	assert.ErrorIs(t, err, storage.ErrInvalidTransition)
}

func TestServiceList(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.IngestText(context.Background(), "first", core.TargetVector, core.GraphNone)
	require.NoError(t, err)
	second, err := svc.IngestText(context.Background(), "second", core.TargetVector, core.GraphNone)
	require.NoError(t, err)

	waitTerminal(t, svc, first.Id)
	waitTerminal(t, svc, second.Id)

	list, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first
	assert.Equal(t, second.Id, list[0].Id)
	assert.Equal(t, first.Id, list[1].Id)
}

func TestServiceStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Status(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
