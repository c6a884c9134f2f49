package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// The KVBackend is used for persisting key-value data.
type KVBackend interface {
	// Put creates or updates a key.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the given key. Returns ErrNotFound if the given key does not
	// exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete deletes a key. Returns ErrNotFound if the given key does not exist.
	Delete(ctx context.Context, key string) error

	// Scan returns a key-value map of all keys directly below the given
	// prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)
}

// An Artifact is the record of a written artifact.
type Artifact struct {
	Name   string    `json:"name"`
	Path   string    `json:"path,omitempty"`
	Digest string    `json:"sha256"`
	Size   int       `json:"size"`
	RunID  string    `json:"run"`
	Time   time.Time `json:"time"`
}

// A Run is the record of a compiler run.
type Run struct {
	ID        string    `json:"id"`
	Hostname  string    `json:"hostname"`
	Time      time.Time `json:"time"`
	Artifacts []string  `json:"artifacts,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

// A Ledger records the artifacts written for each host.
//
// Keys:
//
//	artifacts/<hostname>/<artifact>
//	runs/<hostname>/<run id>
type Ledger struct {
	Backend KVBackend
}

func hostKey(kind, hostname string) (string, error) {
	if hostname == "" || strings.Contains(hostname, "/") {
		return "", errors.Errorf("invalid hostname %q", hostname)
	}
	return fmt.Sprintf("%s/%s", kind, hostname), nil
}

// PutArtifact stores the record of an artifact, replacing any previous
// record with the same name.
func (l *Ledger) PutArtifact(ctx context.Context, hostname string, a Artifact) error {
	prefix, err := hostKey("artifacts", hostname)
	if err != nil {
		return err
	}
	j, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "marshal artifact")
	}
	if err := l.Backend.Put(ctx, prefix+"/"+a.Name, j); err != nil {
		return errors.Wrapf(err, "store artifact %s", a.Name)
	}
	return nil
}

// Artifact returns the last record of an artifact. ErrNotFound is returned
// if the artifact has not been recorded.
func (l *Ledger) Artifact(ctx context.Context, hostname, name string) (*Artifact, error) {
	prefix, err := hostKey("artifacts", hostname)
	if err != nil {
		return nil, err
	}
	b, err := l.Backend.Get(ctx, prefix+"/"+name)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, errors.Wrapf(err, "unmarshal artifact %s", name)
	}
	return &a, nil
}

// Artifacts lists the last record of every artifact of a host, sorted by
// name.
func (l *Ledger) Artifacts(ctx context.Context, hostname string) ([]Artifact, error) {
	prefix, err := hostKey("artifacts", hostname)
	if err != nil {
		return nil, err
	}
	values, err := l.Backend.Scan(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "scan artifacts")
	}
	out := make([]Artifact, 0, len(values))
	for k, v := range values {
		var a Artifact
		if err := json.Unmarshal(v, &a); err != nil {
			return nil, errors.Wrapf(err, "unmarshal %s", k)
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutRun stores the record of a run.
func (l *Ledger) PutRun(ctx context.Context, r Run) error {
	prefix, err := hostKey("runs", r.Hostname)
	if err != nil {
		return err
	}
	if r.ID == "" {
		return errors.New("run has no id")
	}
	j, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal run")
	}
	if err := l.Backend.Put(ctx, prefix+"/"+r.ID, j); err != nil {
		return errors.Wrapf(err, "store run %s", r.ID)
	}
	return nil
}

// Runs lists the runs of a host, oldest first. Run ids sort by time.
func (l *Ledger) Runs(ctx context.Context, hostname string) ([]Run, error) {
	prefix, err := hostKey("runs", hostname)
	if err != nil {
		return nil, err
	}
	values, err := l.Backend.Scan(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "scan runs")
	}
	out := make([]Run, 0, len(values))
	for k, v := range values {
		var r Run
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, errors.Wrapf(err, "unmarshal %s", k)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Forget deletes all artifact records of a host. Runs are kept.
func (l *Ledger) Forget(ctx context.Context, hostname string) error {
	prefix, err := hostKey("artifacts", hostname)
	if err != nil {
		return err
	}
	values, err := l.Backend.Scan(ctx, prefix)
	if err != nil {
		return errors.Wrap(err, "scan artifacts")
	}
	for k := range values {
		if err := l.Backend.Delete(ctx, k); err != nil {
			return errors.Wrapf(err, "delete %s", k)
		}
	}
	return nil
}
