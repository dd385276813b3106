package cron

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/salesreport/pkg/logger"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type fakeRecorder struct {
	success map[string]int
	failure map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{success: map[string]int{}, failure: map[string]int{}}
}

func (f *fakeRecorder) ObserveDuration(string, time.Duration) {}
func (f *fakeRecorder) IncSuccess(job string)                { f.success[job]++ }
func (f *fakeRecorder) IncFailure(job string)                { f.failure[job]++ }

type heldLock struct{}

func (heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (heldLock) Release(context.Context) error         { return nil }

type fakePruner struct {
	olderThan time.Duration
	deleted   int64
	err       error
}

func (f *fakePruner) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, f.err
}

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	bad := &testJob{name: "bad", err: errors.New("boom")}
	recorder := newFakeRecorder()
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, nil, bad),
		Metrics:  recorder,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected each job once, got ok=%d bad=%d", ok.runs, bad.runs)
	}
	if recorder.success["ok"] != 1 || recorder.failure["bad"] != 1 {
		t.Fatalf("unexpected recorder state %+v", recorder)
	}
	if service.interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", service.interval)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "ok"}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: heldLock{}})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock, ran %d", job.runs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "ok"}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Interval: time.Hour})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the initial cycle to run once, ran %d", job.runs)
	}
}

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestRedisLockOwnership(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{data: map[string]string{}}
	first, err := NewRedisLock(store, "sr:lock:report-retention", "api-1", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "sr:lock:report-retention", "", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: %t %v", ok, err)
	}
	if !strings.HasPrefix(store.data["sr:lock:report-retention"], "api-1:") {
		t.Fatalf("expected holder prefix in owner token, got %q", store.data["sr:lock:report-retention"])
	}
	if ok, err := second.Acquire(ctx); err != nil || ok {
		t.Fatalf("second acquire should fail: %t %v", ok, err)
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release without ownership: %v", err)
	}
	if _, held := store.data["sr:lock:report-retention"]; !held {
		t.Fatal("non-owner release must not delete the key")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, held := store.data["sr:lock:report-retention"]; held {
		t.Fatal("owner release should delete the key")
	}

	if _, err := NewRedisLock(nil, "k", "", 0); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(store, "", "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	lock := &LocalLock{}
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if ok, _ := lock.Acquire(ctx); ok {
		t.Fatal("expected second acquire to fail")
	}
	_ = lock.Release(ctx)
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestReportRetentionJob(t *testing.T) {
	pruner := &fakePruner{deleted: 2}
	job, err := NewReportRetentionJob(ReportRetentionJobParams{Logger: testLogger(), Pruner: pruner, Retention: 48 * time.Hour})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != ReportRetentionJobName {
		t.Fatalf("unexpected job name %s", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if pruner.olderThan != 48*time.Hour {
		t.Fatalf("expected retention forwarded, got %s", pruner.olderThan)
	}

	pruner.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected pruner error to surface")
	}

	if _, err := NewReportRetentionJob(ReportRetentionJobParams{Logger: testLogger(), Pruner: pruner}); err == nil {
		t.Fatal("expected error for zero retention")
	}
	if _, err := NewReportRetentionJob(ReportRetentionJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error for missing pruner")
	}
}
