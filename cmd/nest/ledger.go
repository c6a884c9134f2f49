package cmd

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/nest-os/nest/storage"
	"github.com/nest-os/nest/storage/kvbackend"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// stateNone disables the ledger.
const stateNone = "none"

// openLedger opens the ledger at file. An empty file opens the default
// location. Opening is retried while another nest process holds the lock.
//
// A nil ledger and a no-op close func are returned if file is "none".
func openLedger(file string, logger *zap.Logger) (*storage.Ledger, func(), error) {
	if file == stateNone {
		return nil, func() {}, nil
	}
	if file == "" {
		f, err := kvbackend.DefaultFile()
		if err != nil {
			return nil, nil, err
		}
		file = f
	}

	var db *kvbackend.Bolt
	op := func() error {
		b, err := kvbackend.OpenBolt(file)
		if err != nil {
			if errors.Cause(err) == bolt.ErrTimeout {
				return err
			}
			return backoff.Permanent(err)
		}
		db = b
		return nil
	}
	notify := func(err error, dur time.Duration) {
		logger.Info("Ledger is locked, retrying", zap.String("file", file), zap.Duration("duration", dur))
	}
	if err := backoff.RetryNotify(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), notify); err != nil {
		return nil, nil, errors.Wrap(err, "open ledger")
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Warn("Could not close ledger", zap.Error(err))
		}
	}
	return &storage.Ledger{Backend: db}, closeFn, nil
}
