// Package persist loads and saves settings through prioritized streams.
//
// Loading walks the read streams in order. Each stream only sees the
// settings that earlier streams did not have, so a lower-priority stream
// fills gaps and never overrides a value that was already resolved. A read
// or format failure stops the walk. Saving writes every setting to each
// write stream in order and stops at the first failure.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/settingkit/internal/setting"
	"github.com/dshills/settingkit/internal/stream"
)

// Status is the aggregate outcome of Load or Save.
type Status int

const (
	// Success means every setting was read or written.
	Success Status = iota
	// ReadFailed means a stream could not be read or was corrupt.
	ReadFailed
	// WriteFailed means a stream could not be written.
	WriteFailed
	// NotAllSettingsFound means some settings were missing from every
	// read stream and kept their values.
	NotAllSettingsFound
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case ReadFailed:
		return "read_failed"
	case WriteFailed:
		return "write_failed"
	case NotAllSettingsFound:
		return "not_all_settings_found"
	default:
		return "unknown"
	}
}

// Persistor orchestrates read and write streams.
//
// A Persistor is not safe for concurrent use.
type Persistor struct {
	read    []stream.Stream
	write   []stream.Stream
	logger  zerolog.Logger
	message string
}

// Option configures a Persistor.
type Option func(*Persistor)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Persistor) {
		p.logger = logger
	}
}

// New creates a Persistor. Read streams are consulted in the given order,
// highest priority first; write streams are written in the given order.
func New(read, write []stream.Stream, opts ...Option) *Persistor {
	p := &Persistor{
		read:   append([]stream.Stream(nil), read...),
		write:  append([]stream.Stream(nil), write...),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StatusMessage returns the message accompanying the last non-success
// status, or "" after a success.
func (p *Persistor) StatusMessage() string {
	return p.message
}

// Load reads values for all settings of groups.
func (p *Persistor) Load(ctx context.Context, groups ...setting.Group) Status {
	p.message = ""

	worklist := setting.Flatten(groups...)
	if len(p.read) == 0 || len(worklist) == 0 {
		return Success
	}

	for i, s := range p.read {
		if err := ctx.Err(); err != nil {
			return p.fail(ReadFailed, fmt.Errorf("load cancelled: %w", err))
		}

		last := i == len(p.read)-1
		log := p.logger.With().Int("stream", i).Int("settings", len(worklist)).Logger()

		err := s.Read(ctx, worklist)
		switch {
		case err == nil:
			log.Debug().Msg("settings loaded")
			return Success

		case errors.Is(err, stream.ErrSettingsNotFound):
			worklist = s.SettingsNotFound()
			if last {
				return p.fail(NotAllSettingsFound, err)
			}
			log.Debug().Int("missing", len(worklist)).Msg("falling back to next stream")

		case errors.Is(err, stream.ErrFileNotFound):
			if last {
				return p.fail(NotAllSettingsFound, err)
			}
			log.Debug().Err(err).Msg("falling back to next stream")

		default:
			return p.fail(ReadFailed, err)
		}
	}

	return Success
}

// Save writes all settings of groups to every write stream.
func (p *Persistor) Save(ctx context.Context, groups ...setting.Group) Status {
	p.message = ""

	settings := setting.Flatten(groups...)
	if len(p.write) == 0 || len(settings) == 0 {
		return Success
	}

	for i, s := range p.write {
		if err := ctx.Err(); err != nil {
			return p.fail(WriteFailed, fmt.Errorf("save cancelled: %w", err))
		}
		if err := s.Write(ctx, settings); err != nil {
			return p.fail(WriteFailed, err)
		}
		p.logger.Debug().Int("stream", i).Int("settings", len(settings)).Msg("settings saved")
	}

	return Success
}

func (p *Persistor) fail(status Status, err error) Status {
	p.message = err.Error()

	ev := p.logger.Warn()
	if status == NotAllSettingsFound {
		ev = p.logger.Info()
	}
	ev.Err(err).Stringer("status", status).Msg("persistence incomplete")
	return status
}
