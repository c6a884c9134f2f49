package kvbackend

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/nest-os/nest/storage"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// LockTimeout is how long opening a database waits for another process to
// release it.
const LockTimeout = 3 * time.Second

// DefaultFile returns the default ledger location, ~/.nest/state.db.
func DefaultFile() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "get user")
	}
	return filepath.Join(u.HomeDir, ".nest", "state.db"), nil
}

// Bolt stores key-value pairs in a bolt database. Keys are split at the last
// slash into a bucket and a key within the bucket.
type Bolt struct {
	db *bolt.DB
}

var _ storage.KVBackend = (*Bolt)(nil)

// OpenBolt opens the database at the given path. The file and its directory
// are created if they do not exist.
func OpenBolt(file string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, errors.Wrapf(err, "create directory %s", filepath.Dir(file))
	}
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: LockTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file)
	}
	return &Bolt{db: db}, nil
}

// Close releases the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Put creates or updates a value.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	bucket, k, err := splitKey(key)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return errors.Wrapf(err, "create bucket %s", bucket)
		}
		return buc.Put(k, value)
	})
}

// Get returns a copy of a value, or storage.ErrNotFound.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	bucket, k, err := splitKey(key)
	if err != nil {
		return nil, err
	}
	var out []byte
	err = b.db.View(func(tx *bolt.Tx) error {
		v := lookup(tx, bucket, k)
		if v == nil {
			return storage.ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Delete deletes a value. Deleting a missing key returns
// storage.ErrNotFound.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	bucket, k, err := splitKey(key)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if lookup(tx, bucket, k) == nil {
			return storage.ErrNotFound
		}
		return errors.Wrap(tx.Bucket(bucket).Delete(k), "delete")
	})
}

// Scan returns all values in the bucket named by prefix, keyed by their full
// key.
func (b *Bolt) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if strings.HasSuffix(prefix, "/") {
		return nil, errors.New("prefix must not end with a slash")
	}
	out := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		buc := tx.Bucket([]byte(prefix))
		if buc == nil {
			return nil
		}
		return buc.ForEach(func(k, v []byte) error {
			out[prefix+"/"+string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	return out, err
}

func lookup(tx *bolt.Tx, bucket, key []byte) []byte {
	buc := tx.Bucket(bucket)
	if buc == nil {
		return nil
	}
	return buc.Get(key)
}

// splitKey splits a key at its last slash:
//
//	artifacts/nest/system.conf
//	->
//	bucket: artifacts/nest
//	key:    system.conf
func splitKey(input string) (bucket, key []byte, err error) {
	slash := strings.LastIndex(input, "/")
	switch {
	case strings.HasPrefix(input, "/"):
		return nil, nil, errors.Errorf("key %q starts with a slash", input)
	case slash == -1:
		return nil, nil, errors.Errorf("key %q does not contain a slash", input)
	case slash == len(input)-1:
		return nil, nil, errors.Errorf("key %q ends with a slash", input)
	}
	return []byte(input[:slash]), []byte(input[slash+1:]), nil
}
