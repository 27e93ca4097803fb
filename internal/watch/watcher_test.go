package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"heartdash/adapters/excel"
	"heartdash/internal/api"
	"heartdash/internal/filter"
	"heartdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Notify(eventType string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1]
}

func newService(t *testing.T) *filter.Service {
	t.Helper()
	svc, err := filter.NewService(filter.NewDataset(testkit.SampleFrame(), "sample"), filter.CacheOptions{TTL: time.Minute, MaxCost: 16})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestReloadSwapsDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Entity,Code,Year\nFrance,FRA,2000\n"), 0o644))

	svc := newService(t)
	rec := &recorder{}
	w, err := New(path, excel.LoadFrame, svc, rec)
	require.NoError(t, err)
	defer w.Close()

	before := svc.Dataset().Version
	require.NoError(t, w.Reload())
	assert.Equal(t, 1, svc.Dataset().Frame.Len())
	assert.Greater(t, svc.Dataset().Version, before)
	assert.Equal(t, api.EventDataReloaded, rec.last())
}

func TestFailedReloadKeepsData(t *testing.T) {
	svc := newService(t)
	rec := &recorder{}
	w, err := New(filepath.Join(t.TempDir(), "missing.csv"), excel.LoadFrame, svc, rec)
	require.NoError(t, err)
	defer w.Close()

	rows := svc.Dataset().Frame.Len()
	assert.Error(t, w.Reload())
	assert.Equal(t, rows, svc.Dataset().Frame.Len())
	assert.Equal(t, api.EventReloadFailed, rec.last())
}

func TestWriteTriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Entity,Code,Year\nFrance,FRA,2000\n"), 0o644))

	svc := newService(t)
	rec := &recorder{}
	w, err := New(path, excel.LoadFrame, svc, rec)
	require.NoError(t, err)
	w.WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("Entity,Code,Year\nFrance,FRA,2000\nPeru,PER,2000\n"), 0o644))
	assert.Eventually(t, func() bool { return svc.Dataset().Frame.Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, api.EventDataReloaded, rec.last())
}
