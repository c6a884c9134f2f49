package kvbackend

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nest-os/nest/storage"
	"github.com/pkg/errors"
)

func TestBackends(t *testing.T) {
	tests := []struct {
		name   string
		create func(t *testing.T) (storage.KVBackend, func())
	}{
		{
			name: "Memory",
			create: func(*testing.T) (storage.KVBackend, func()) {
				return &Memory{}, func() {}
			},
		},
		{
			name: "Bolt",
			create: func(t *testing.T) (storage.KVBackend, func()) {
				dir, err := ioutil.TempDir("", "nest-bolt")
				if err != nil {
					t.Fatal(err)
				}
				db, err := OpenBolt(filepath.Join(dir, "sub", "state.db"))
				if err != nil {
					t.Fatal(err)
				}
				return db, func() {
					if err := db.Close(); err != nil {
						t.Errorf("Close() err = %v", err)
					}
					if err := os.RemoveAll(dir); err != nil {
						t.Errorf("remove temp dir: %v", err)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, done := tt.create(t)
			defer done()
			ctx := context.Background()

			if _, err := be.Get(ctx, "artifacts/nest/system.conf"); errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Get() missing err = %v, want %v", err, storage.ErrNotFound)
			}

			put := func(k, v string) {
				t.Helper()
				if err := be.Put(ctx, k, []byte(v)); err != nil {
					t.Fatalf("Put(%q) err = %v", k, err)
				}
			}
			put("artifacts/nest/system.conf", "a")
			put("artifacts/nest/system.conf", "b")
			put("artifacts/nest/users.conf", "c")
			put("artifacts/nest-2/users.conf", "d")
			put("artifacts/nest/sub/x", "e")

			got, err := be.Get(ctx, "artifacts/nest/system.conf")
			if err != nil {
				t.Fatalf("Get() err = %v", err)
			}
			if string(got) != "b" {
				t.Errorf("Get() = %q, want %q", got, "b")
			}

			scan, err := be.Scan(ctx, "artifacts/nest")
			if err != nil {
				t.Fatalf("Scan() err = %v", err)
			}
			want := map[string][]byte{
				"artifacts/nest/system.conf": []byte("b"),
				"artifacts/nest/users.conf":  []byte("c"),
			}
			if diff := cmp.Diff(scan, want); diff != "" {
				t.Errorf("Scan() (-got +want)\n%s", diff)
			}

			scan, err = be.Scan(ctx, "nonexisting")
			if err != nil {
				t.Fatalf("Scan() err = %v", err)
			}
			if diff := cmp.Diff(scan, map[string][]byte{}, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Scan() nonexisting (-got +want)\n%s", diff)
			}

			if err := be.Delete(ctx, "artifacts/nest/missing"); errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Delete() missing err = %v, want %v", err, storage.ErrNotFound)
			}
			if err := be.Delete(ctx, "artifacts/nest/system.conf"); err != nil {
				t.Errorf("Delete() err = %v", err)
			}
			if _, err := be.Get(ctx, "artifacts/nest/system.conf"); errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Get() deleted err = %v, want %v", err, storage.ErrNotFound)
			}
		})
	}
}
