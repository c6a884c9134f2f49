package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nest-os/nest/storage"
	"github.com/nest-os/nest/storage/kvbackend"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

func TestLedger_artifacts(t *testing.T) {
	l := &storage.Ledger{Backend: &kvbackend.Memory{}}
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := l.Artifacts(ctx, "nest")
	if err != nil {
		t.Fatalf("Artifacts() err = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Artifacts() = %v, want none", got)
	}

	users := storage.Artifact{Name: "users.conf", Digest: "aa", Size: 10, RunID: "1", Time: now}
	system := storage.Artifact{Name: "system.conf", Digest: "bb", Size: 20, RunID: "1", Time: now}
	for _, a := range []storage.Artifact{users, system} {
		if err := l.PutArtifact(ctx, "nest", a); err != nil {
			t.Fatalf("PutArtifact() err = %v", err)
		}
	}
	other := storage.Artifact{Name: "users.conf", Digest: "cc", Time: now}
	if err := l.PutArtifact(ctx, "nest-2", other); err != nil {
		t.Fatalf("PutArtifact() err = %v", err)
	}

	got, err = l.Artifacts(ctx, "nest")
	if err != nil {
		t.Fatalf("Artifacts() err = %v", err)
	}
	if diff := cmp.Diff(got, []storage.Artifact{system, users}); diff != "" {
		t.Errorf("Artifacts() (-got +want)\n%s", diff)
	}

	a, err := l.Artifact(ctx, "nest-2", "users.conf")
	if err != nil {
		t.Fatalf("Artifact() err = %v", err)
	}
	if diff := cmp.Diff(a, &other); diff != "" {
		t.Errorf("Artifact() (-got +want)\n%s", diff)
	}

	if _, err := l.Artifact(ctx, "nest", "locale.conf"); errors.Cause(err) != storage.ErrNotFound {
		t.Errorf("Artifact() missing err = %v, want ErrNotFound", err)
	}

	if err := l.Forget(ctx, "nest"); err != nil {
		t.Fatalf("Forget() err = %v", err)
	}
	got, err = l.Artifacts(ctx, "nest")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Artifacts() after Forget() = %v, want none", got)
	}
	if _, err := l.Artifact(ctx, "nest-2", "users.conf"); err != nil {
		t.Errorf("Forget() removed another host: %v", err)
	}
}

func TestLedger_runs(t *testing.T) {
	l := &storage.Ledger{Backend: &kvbackend.Memory{}}
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var want []storage.Run
	for i := 0; i < 3; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		id, err := ksuid.NewRandomWithTime(ts)
		if err != nil {
			t.Fatal(err)
		}
		want = append(want, storage.Run{ID: id.String(), Hostname: "nest", Time: ts, Artifacts: []string{"system.conf"}})
	}
	// Stored out of order.
	for _, i := range []int{2, 0, 1} {
		if err := l.PutRun(ctx, want[i]); err != nil {
			t.Fatalf("PutRun() err = %v", err)
		}
	}

	got, err := l.Runs(ctx, "nest")
	if err != nil {
		t.Fatalf("Runs() err = %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Runs() (-got +want)\n%s", diff)
	}

	if err := l.PutRun(ctx, storage.Run{Hostname: "nest"}); err == nil {
		t.Error("PutRun() without id err = nil")
	}
}

func TestLedger_invalidHostname(t *testing.T) {
	l := &storage.Ledger{Backend: &kvbackend.Memory{}}
	ctx := context.Background()
	for _, host := range []string{"", "a/b"} {
		if err := l.PutArtifact(ctx, host, storage.Artifact{Name: "x"}); err == nil {
			t.Errorf("PutArtifact(%q) err = nil", host)
		}
		if _, err := l.Runs(ctx, host); err == nil {
			t.Errorf("Runs(%q) err = nil", host)
		}
	}
}
