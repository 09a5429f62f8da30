package services

import (
	"testing"
	"time"

	"fincore-assistant/internal/store"
	"fincore-assistant/models"
)

func newSchedulerFixture(st *store.MemoryStore) *JobScheduler {
	ix := NewIndexer(&fakeSource{}, &fakeEmbedder{}, st, 100, nil)
	return NewJobScheduler(SchedulerIntervals{
		Index:       6 * time.Hour,
		CacheSweep:  time.Hour,
		HealthProbe: 30 * time.Minute,
	}, ix, st, &fakeSource{healthy: true})
}

func TestStartAllRegistersStandingJobs(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if err := js.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	status := js.Status()
	for _, name := range []string{JobIndexRefresh, JobCacheSweep, JobHealthProbe} {
		if running, ok := status[name]; !ok || !running {
			t.Errorf("expected job %s registered and running, status=%v", name, status)
		}
	}
}

func TestStartAllIdempotent(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if err := js.StartAll(); err != nil {
		t.Fatalf("first StartAll failed: %v", err)
	}
	if err := js.StartAll(); err != nil {
		t.Fatalf("second StartAll must be a no-op, got %v", err)
	}
	if len(js.Status()) != 3 {
		t.Errorf("expected exactly 3 jobs after double StartAll, got %d", len(js.Status()))
	}
}

func TestStopAllClearsRegistry(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())

	if err := js.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	js.StopAll()

	if status := js.Status(); len(status) != 0 {
		t.Errorf("expected no jobs after StopAll, got %v", status)
	}
}

func TestRestartUnknownJob(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if js.Restart("unknown-job") {
		t.Error("restart of unknown job must report failure")
	}
}

func TestStopUnknownJob(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if js.Stop("nope") {
		t.Error("stop of unknown job must report failure, not panic")
	}
}

func TestStopThenRestartKnownJob(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if err := js.StartAll(); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if !js.Stop(JobCacheSweep) {
		t.Fatal("stopping a registered job must succeed")
	}
	if _, ok := js.Status()[JobCacheSweep]; ok {
		t.Error("stopped job must leave the registry")
	}

	if !js.Restart(JobCacheSweep) {
		t.Fatal("restart of a known job must succeed even when stopped")
	}
	if running := js.Status()[JobCacheSweep]; !running {
		t.Error("restarted job must be running")
	}
}

func TestTriggerNowRunsHandlerOnce(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetCacheEntry(models.CacheEntry{
		Key:       "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	st.SetCacheEntry(models.CacheEntry{
		Key:       "fresh",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	js := newSchedulerFixture(st)
	defer js.StopAll()

	if err := js.TriggerNow(JobCacheSweep); err != nil {
		t.Fatalf("manual trigger failed: %v", err)
	}
	if st.CacheLen() != 1 {
		t.Errorf("expected expired entry swept, %d entries remain", st.CacheLen())
	}
}

func TestTriggerNowUnknownJob(t *testing.T) {
	js := newSchedulerFixture(store.NewMemoryStore())
	defer js.StopAll()

	if err := js.TriggerNow("no-such-job"); err == nil {
		t.Error("expected error for unknown job")
	}
}
