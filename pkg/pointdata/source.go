// Package pointdata reads node payloads from the point-data file of a
// decoded octree and turns them into points.
package pointdata

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
)

// Fetch errors.
var (
	// ErrNoPayload is returned when fetching a node that does not address
	// point data.
	ErrNoPayload = errors.New("node has no point payload")
	// ErrPayloadTooLarge is returned when a payload exceeds MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("node payload too large")
)

// MaxPayloadBytes bounds a single node payload read from a source whose
// size is unknown.
const MaxPayloadBytes = 1 << 30

// RangeReader reads a byte range of the point-data file into dst. It
// returns the number of bytes read, which may be less than length when the
// range runs past the end of the file.
type RangeReader interface {
	ReadRange(offset, length uint64, dst []byte) (int, error)
}

// Sizer is implemented by sources that know their total size. Payload
// reads from such sources are clamped to it before allocating.
type Sizer interface {
	Size() uint64
}

// File is a RangeReader over a file on disk.
type File struct {
	path string
	file *os.File
	size uint64
}

// OpenFile opens a point-data file for random access.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening point data: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("stat point data: %w", err), f.Close())
	}

	return &File{path: path, file: f, size: uint64(info.Size())}, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Size returns the file size in bytes.
func (f *File) Size() uint64 {
	return f.size
}

// ReadRange reads up to length bytes at offset, clamped to the file size
// and to len(dst). A start at or past the end of the file reads nothing.
func (f *File) ReadRange(offset, length uint64, dst []byte) (int, error) {
	if offset >= f.size {
		return 0, nil
	}

	n := min(length, f.size-offset, uint64(len(dst)))
	read, err := f.file.ReadAt(dst[:n], int64(offset))
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return read, err
}

// Close closes the underlying file.
func (f *File) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// ReadFileRange opens path, reads one range and closes the file again.
func ReadFileRange(path string, offset, length uint64) (data []byte, err error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	data = make([]byte, length)
	n, err := f.ReadRange(offset, length, data)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}
