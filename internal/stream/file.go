package stream

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/settingkit/internal/setting"
)

// FileSystem is the subset of file operations used by File.
// Tests substitute an in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Rename(oldPath, newPath string) error
	MkdirAll(path string, perm fs.FileMode) error
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WriteFile implements FileSystem.
func (OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Rename implements FileSystem.
func (OSFS) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

// MkdirAll implements FileSystem.
func (OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

// File stores all settings of one Write in a single document mapping
// setting names to values.
type File struct {
	tracker
	path  string
	fs    FileSystem
	codec Codec
}

// FileOption configures a File stream.
type FileOption func(*File)

// WithFileSystem replaces the OS file system.
func WithFileSystem(fsys FileSystem) FileOption {
	return func(f *File) {
		f.fs = fsys
	}
}

// WithCodec overrides the codec chosen from the file extension.
func WithCodec(c Codec) FileOption {
	return func(f *File) {
		f.codec = c
	}
}

// NewFile creates a file stream for path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:  path,
		fs:    OSFS{},
		codec: CodecForPath(path),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Codec returns the file codec.
func (f *File) Codec() Codec {
	return f.codec
}

// Read implements Stream. The whole file is parsed before any setting is
// assigned.
func (f *File) Read(_ context.Context, settings []*setting.Setting) error {
	f.reset()

	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{
				Op: "read", Location: f.path, Kind: ErrFileNotFound, Err: err,
				Message: fmt.Sprintf("could not find file with settings %q", f.path),
			}
		}
		return &Error{
			Op: "read", Location: f.path, Kind: ErrReadFailed, Err: err,
			Message: fmt.Sprintf("could not read settings from file %q; make sure the file can be accessed", f.path),
		}
	}

	doc, err := f.codec.Unmarshal(data)
	if err != nil {
		return &Error{
			Op: "read", Location: f.path, Kind: ErrInvalidFormat, Err: err,
			Message: fmt.Sprintf("file with settings %q is corrupt; save the settings again to overwrite the file, or delete the file", f.path),
		}
	}

	return f.apply(settings, func(name string) (any, bool, error) {
		v, ok := doc[name]
		return v, ok, nil
	})
}

// Write implements Stream. The document is written to a temporary file
// that replaces the target on success.
func (f *File) Write(_ context.Context, settings []*setting.Setting) error {
	writeErr := func(err error) error {
		return &Error{
			Op: "write", Location: f.path, Kind: ErrWriteFailed, Err: err,
			Message: fmt.Sprintf("could not write settings to file %q; make sure the file can be accessed", f.path),
		}
	}

	data, err := f.codec.Marshal(valueMap(settings))
	if err != nil {
		return writeErr(err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return writeErr(err)
		}
	}

	tmp := f.path + ".tmp"
	if err := f.fs.WriteFile(tmp, data, 0o644); err != nil {
		return writeErr(err)
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return writeErr(err)
	}
	return nil
}
