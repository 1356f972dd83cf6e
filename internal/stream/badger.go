package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/dshills/settingkit/internal/setting"
)

// BadgerConfig configures the database opened by OpenBadger.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in RAM only.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives badger's internal log output. Nil disables it.
	Logger *zerolog.Logger
}

// InMemoryBadgerConfig returns a configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts zerolog to badger's Logger interface.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

// OpenBadger opens a badger database for use with NewBadger.
func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger.With().Str("component", "badger").Logger()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// Badger stores each setting under "<prefix><name>" in an embedded badger
// database. Values are JSON encoded. A Write commits in one transaction.
type Badger struct {
	tracker
	db     *badger.DB
	prefix string
}

// NewBadger creates a badger stream. The caller owns db.
func NewBadger(db *badger.DB, prefix string) *Badger {
	return &Badger{db: db, prefix: prefix}
}

// Read implements Stream.
func (b *Badger) Read(_ context.Context, settings []*setting.Setting) error {
	b.reset()

	values := make(map[string]any, len(settings))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, s := range settings {
			item, err := txn.Get([]byte(b.prefix + s.Name()))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return &Error{Op: "read", Location: b.prefix, Kind: ErrReadFailed, Err: err}
			}

			var v any
			err = item.Value(func(raw []byte) error {
				return json.Unmarshal(raw, &v)
			})
			if err != nil {
				return &Error{Op: "read", Location: b.prefix + s.Name(), Kind: ErrInvalidFormat, Err: err}
			}
			values[s.Name()] = v
		}
		return nil
	})
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) {
			return serr
		}
		return &Error{Op: "read", Location: b.prefix, Kind: ErrReadFailed, Err: err}
	}

	return b.apply(settings, func(name string) (any, bool, error) {
		v, ok := values[name]
		return v, ok, nil
	})
}

// Write implements Stream.
func (b *Badger) Write(_ context.Context, settings []*setting.Setting) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, s := range settings {
			raw, err := json.Marshal(s.Value())
			if err != nil {
				return fmt.Errorf("encode %s: %w", s.Name(), err)
			}
			if err := txn.Set([]byte(b.prefix+s.Name()), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &Error{Op: "write", Location: b.prefix, Kind: ErrWriteFailed, Err: err}
	}
	return nil
}
