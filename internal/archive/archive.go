// Package archive provides the bidirectional, versioned serialization stream
// used to persist editable and compiled face graphs.
//
// A single Serialize(ar) method on a type handles both directions: the same
// sequence of calls writes fields when the archive is saving and fills them in
// when it is loading. Errors are sticky; after the first failure every later
// call is a no-op and Err reports the original cause.
package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrClassMismatch is reported when a version tag is read for a class
	// other than the one the caller expected.
	ErrClassMismatch = errors.New("archive: class tag mismatch")
	// ErrFutureVersion is reported when the stream was written by a newer
	// class version than the running code understands.
	ErrFutureVersion = errors.New("archive: class version is newer than supported")
	// ErrLengthOutOfRange is reported for negative or implausibly large
	// array lengths.
	ErrLengthOutOfRange = errors.New("archive: length out of range")
)

// MaxLen bounds any single array length read from a stream.
const MaxLen = 1 << 24

// Archive is the bidirectional stream handed to Serialize methods.
type Archive interface {
	IsLoading() bool
	IsSaving() bool
	// Version writes (saving) or reads (loading) the class version tag of
	// the named class and returns the version the rest of the call sequence
	// must follow.
	Version(class string, current uint16) uint16
	Int32(v *int32)
	Uint32(v *uint32)
	Float32(v *float32)
	Float64(v *float64)
	Bool(v *bool)
	String(v *string)
	// Len writes or reads an array length prefix.
	Len(n *int)
	// Fail records err as the archive's error unless one is already set.
	Fail(err error)
	Err() error
}

// Writer is a saving archive.
type Writer struct {
	enc *msgpack.Encoder
	err error
}

// NewWriter returns a saving archive writing msgpack to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: msgpack.NewEncoder(w)}
}

func (a *Writer) IsLoading() bool { return false }
func (a *Writer) IsSaving() bool  { return true }
func (a *Writer) Err() error      { return a.err }

func (a *Writer) Fail(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

func (a *Writer) Version(class string, current uint16) uint16 {
	if a.err != nil {
		return current
	}
	a.Fail(a.enc.EncodeString(class))
	if a.err == nil {
		a.Fail(a.enc.EncodeUint16(current))
	}
	return current
}

func (a *Writer) Int32(v *int32) {
	if a.err == nil {
		a.Fail(a.enc.EncodeInt32(*v))
	}
}

func (a *Writer) Uint32(v *uint32) {
	if a.err == nil {
		a.Fail(a.enc.EncodeUint32(*v))
	}
}

func (a *Writer) Float32(v *float32) {
	if a.err == nil {
		a.Fail(a.enc.EncodeFloat32(*v))
	}
}

func (a *Writer) Float64(v *float64) {
	if a.err == nil {
		a.Fail(a.enc.EncodeFloat64(*v))
	}
}

func (a *Writer) Bool(v *bool) {
	if a.err == nil {
		a.Fail(a.enc.EncodeBool(*v))
	}
}

func (a *Writer) String(v *string) {
	if a.err == nil {
		a.Fail(a.enc.EncodeString(*v))
	}
}

func (a *Writer) Len(n *int) {
	if a.err != nil {
		return
	}
	if *n < 0 || *n > MaxLen {
		a.Fail(fmt.Errorf("%w: %d", ErrLengthOutOfRange, *n))
		return
	}
	a.Fail(a.enc.EncodeArrayLen(*n))
}

// Reader is a loading archive.
type Reader struct {
	dec *msgpack.Decoder
	err error
}

// NewReader returns a loading archive reading msgpack from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(r)}
}

func (a *Reader) IsLoading() bool { return true }
func (a *Reader) IsSaving() bool  { return false }
func (a *Reader) Err() error      { return a.err }

func (a *Reader) Fail(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

func (a *Reader) Version(class string, current uint16) uint16 {
	if a.err != nil {
		return 0
	}
	got, err := a.dec.DecodeString()
	if err != nil {
		a.Fail(err)
		return 0
	}
	if got != class {
		a.Fail(fmt.Errorf("%w: want %q, got %q", ErrClassMismatch, class, got))
		return 0
	}
	v, err := a.dec.DecodeUint16()
	if err != nil {
		a.Fail(err)
		return 0
	}
	if v > current {
		a.Fail(fmt.Errorf("%w: %s version %d, supported %d", ErrFutureVersion, class, v, current))
		return 0
	}
	return v
}

func (a *Reader) Int32(v *int32) {
	if a.err != nil {
		return
	}
	n, err := a.dec.DecodeInt32()
	a.Fail(err)
	*v = n
}

func (a *Reader) Uint32(v *uint32) {
	if a.err != nil {
		return
	}
	n, err := a.dec.DecodeUint32()
	a.Fail(err)
	*v = n
}

func (a *Reader) Float32(v *float32) {
	if a.err != nil {
		return
	}
	f, err := a.dec.DecodeFloat32()
	a.Fail(err)
	*v = f
}

func (a *Reader) Float64(v *float64) {
	if a.err != nil {
		return
	}
	f, err := a.dec.DecodeFloat64()
	a.Fail(err)
	*v = f
}

func (a *Reader) Bool(v *bool) {
	if a.err != nil {
		return
	}
	b, err := a.dec.DecodeBool()
	a.Fail(err)
	*v = b
}

func (a *Reader) String(v *string) {
	if a.err != nil {
		return
	}
	s, err := a.dec.DecodeString()
	a.Fail(err)
	*v = s
}

func (a *Reader) Len(n *int) {
	if a.err != nil {
		*n = 0
		return
	}
	l, err := a.dec.DecodeArrayLen()
	if err != nil {
		a.Fail(err)
		*n = 0
		return
	}
	if l < 0 || l > MaxLen {
		a.Fail(fmt.Errorf("%w: %d", ErrLengthOutOfRange, l))
		*n = 0
		return
	}
	*n = l
}

// Float32s serializes a length-prefixed float slice. On load the slice is
// replaced; an empty list loads as nil.
func Float32s(ar Archive, v *[]float32) {
	n := len(*v)
	ar.Len(&n)
	if ar.IsLoading() {
		if n == 0 {
			*v = nil
			return
		}
		*v = make([]float32, n)
	}
	for i := range *v {
		ar.Float32(&(*v)[i])
	}
}

// Strings serializes a length-prefixed string slice.
func Strings(ar Archive, v *[]string) {
	n := len(*v)
	ar.Len(&n)
	if ar.IsLoading() {
		if n == 0 {
			*v = nil
			return
		}
		*v = make([]string, n)
	}
	for i := range *v {
		ar.String(&(*v)[i])
	}
}
