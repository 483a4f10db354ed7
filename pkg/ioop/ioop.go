// Package ioop implements the uniform read/write/flush/seek/open/metadata
// operation layer that native code runs against an open stream and the
// filesystem.
//
// Every operation here is a thin, uniform wrapper: it does not own the
// file or stream it's given, does not retry, and reports failure as an
// *rterr.Error rather than a bare error, so callers can distinguish a
// recoverable I/O condition from a process-fatal one (invalid mode,
// out-of-range offset) without a type switch on the underlying os error.
package ioop

import (
	"bufio"
	"io"
	"math"
	"math/big"
	"os"
	"time"

	"github.com/weftlang/weft/pkg/rterr"
)

// Mode is the closed set of file-open modes accepted by Open.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
	ModeReadWrite
	ModeReadAppend
)

// Prototype tags a File with the access class its open mode belongs to,
// so built-in dispatch can restrict which operations a given File
// permits without re-deriving that from the mode it was opened with.
type Prototype int

const (
	PrototypeReadOnly Prototype = iota
	PrototypeWriteOnly
	PrototypeReadWrite
)

func (p Prototype) String() string {
	switch p {
	case PrototypeReadOnly:
		return "ReadOnlyFile"
	case PrototypeWriteOnly:
		return "WriteOnlyFile"
	case PrototypeReadWrite:
		return "ReadWriteFile"
	default:
		return "UnknownFile"
	}
}

// prototypeForMode mirrors prototype_for_open_mode: a read-only open
// gets a read-only prototype, write and append-only opens get
// write-only, and the two read+write modes get read-write.
func prototypeForMode(mode Mode) Prototype {
	switch mode {
	case ModeRead:
		return PrototypeReadOnly
	case ModeWrite, ModeAppend:
		return PrototypeWriteOnly
	default:
		return PrototypeReadWrite
	}
}

// File pairs an open file with the prototype its mode was tagged with.
type File struct {
	*os.File
	Prototype Prototype
}

// Open opens path under mode, failing with a Panic-kind error for any
// mode outside the closed set. The returned File is tagged with the
// prototype for its mode so built-in dispatch can restrict operations.
func Open(path string, mode Mode) (*File, error) {
	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ModeReadWrite:
		flag = os.O_RDWR | os.O_CREATE
	case ModeReadAppend:
		flag = os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		return nil, rterr.PanicError("invalid file open mode")
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, rterr.IOError("failed to open "+path, err)
	}
	return &File{File: f, Prototype: prototypeForMode(mode)}, nil
}

// Read reads up to amount bytes from r, or to end of stream if amount is
// negative. The returned slice is always shrunk to exactly the bytes
// read, never left over-allocated.
func Read(r io.Reader, amount int) ([]byte, error) {
	var buf []byte
	var err error

	if amount < 0 {
		buf, err = io.ReadAll(r)
		if err != nil {
			return nil, rterr.IOError("read failed", err)
		}
	} else {
		buf = make([]byte, amount)
		n, readErr := io.ReadFull(r, buf)
		buf = buf[:n]
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return nil, rterr.IOError("read failed", readErr)
		}
	}

	shrunk := make([]byte, len(buf))
	copy(shrunk, buf)
	return shrunk, nil
}

// Write writes value, either a string or a raw byte slice, to w and
// returns the number of bytes written.
func Write(w io.Writer, value interface{}) (int, error) {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return 0, rterr.PanicError("write value must be a string or byte array")
	}

	n, err := w.Write(data)
	if err != nil {
		return n, rterr.IOError("write failed", err)
	}
	return n, nil
}

// Flush flushes a buffered writer, if it supports flushing.
func Flush(w interface{}) error {
	switch f := w.(type) {
	case *bufio.Writer:
		if err := f.Flush(); err != nil {
			return rterr.IOError("flush failed", err)
		}
	case *File:
		if err := f.File.Sync(); err != nil {
			return rterr.IOError("flush failed", err)
		}
	case *os.File:
		if err := f.Sync(); err != nil {
			return rterr.IOError("flush failed", err)
		}
	}
	return nil
}

// maxUint64 mirrors the unsigned-64-bit ceiling a seek offset may not
// exceed.
var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Seek moves file's cursor to offset, which must fit in an unsigned
// 64-bit integer. A negative offset or one that overflows uint64 is a
// Panic-kind failure, not an I/O failure: these are programmer errors in
// user code, not environmental conditions.
func Seek(file *File, offset *big.Int) (int64, error) {
	if offset.Sign() < 0 {
		return 0, rterr.PanicError("seek offset must not be negative")
	}
	if offset.Cmp(maxUint64) > 0 {
		return 0, rterr.PanicError("seek offset exceeds the maximum representable offset")
	}

	pos, err := file.File.Seek(offset.Int64(), io.SeekStart)
	if err != nil {
		return 0, rterr.IOError("seek failed", err)
	}
	return pos, nil
}

// MkdirAll creates path, creating parent directories when recursive is
// true; otherwise only the leaf directory is created.
func MkdirAll(path string, recursive bool) error {
	var err error
	if recursive {
		err = os.MkdirAll(path, 0o755)
	} else {
		err = os.Mkdir(path, 0o755)
	}
	if err != nil {
		return rterr.IOError("failed to create directory "+path, err)
	}
	return nil
}

// RemoveDir removes path, recursing into its contents when recursive is
// true.
func RemoveDir(path string, recursive bool) error {
	var err error
	if recursive {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return rterr.IOError("failed to remove directory "+path, err)
	}
	return nil
}

// List returns the names of path's direct children.
func List(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, rterr.IOError("failed to list "+path, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// Metadata delegates to os.Stat.
func Metadata(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, rterr.IOError("failed to stat "+path, err)
	}
	return info, nil
}

// Copy copies src to dst, overwriting dst if it exists, and returns the
// number of bytes copied.
func Copy(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, rterr.IOError("failed to open "+src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, rterr.IOError("failed to open "+dst, err)
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, rterr.IOError("copy failed", err)
	}
	return n, nil
}

// Remove removes the file at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return rterr.IOError("failed to remove "+path, err)
	}
	return nil
}

// EntryType reports the on-disk type of path: "file", "directory", or
// "symlink".
func EntryType(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", rterr.IOError("failed to stat "+path, err)
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return "symlink", nil
	case info.IsDir():
		return "directory", nil
	default:
		return "file", nil
	}
}

// ModTime returns path's modification time as floating-point seconds
// since the Unix epoch.
func ModTime(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, rterr.IOError("failed to stat "+path, err)
	}
	return float64(info.ModTime().UnixNano()) / float64(time.Second), nil
}
