package blob

import (
	"bytes"
	"encoding/binary"
	"reflect"

	"github.com/pkg/errors"
)

// Pack directives, each introduced by '%':
//
//	D  uint32, network byte order
//	H  uint16, network byte order
//	b  byte buffer, length required
//	c  uint8
//	d  uint32, host byte order
//	h  uint16, host byte order
//	s  NUL-terminated string, maximum length required to unpack
//
// A directive may be prefixed by a decimal length or by '*', which takes the
// length from the next int argument. Integer directives only accept their
// natural size as length. Any other character in the format is copied when
// packing and must match when unpacking.
const (
	verbNetU32  = 'D'
	verbNetU16  = 'H'
	verbBuf     = 'b'
	verbByte    = 'c'
	verbHostU32 = 'd'
	verbHostU16 = 'h'
	verbString  = 's'
)

const noLen = -1

type directive struct {
	verb    byte // 0 for a literal
	literal byte
	length  int // noLen when absent
	star    bool
}

func parseFormat(format string) ([]directive, error) {
	var ds []directive
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			ds = append(ds, directive{literal: format[i], length: noLen})
			continue
		}

		d := directive{length: noLen}
		i++
		switch {
		case i < len(format) && format[i] == '*':
			d.star = true
			i++
		case i < len(format) && format[i] >= '0' && format[i] <= '9':
			d.length = 0
			for ; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
				d.length = d.length*10 + int(format[i]-'0')
			}
		}
		if i >= len(format) {
			return nil, errors.Wrapf(ErrFormat, "%q ends inside a directive", format)
		}

		d.verb = format[i]
		switch d.verb {
		case verbNetU32, verbNetU16, verbBuf, verbByte, verbHostU32, verbHostU16, verbString:
		default:
			return nil, errors.Wrapf(ErrFormat, "unknown directive %%%c", d.verb)
		}
		ds = append(ds, d)
	}
	return ds, nil
}

func intSize(verb byte) int {
	switch verb {
	case verbNetU32, verbHostU32:
		return 4
	case verbNetU16, verbHostU16:
		return 2
	case verbByte:
		return 1
	}
	return 0
}

func byteOrder(verb byte) interface {
	binary.ByteOrder
	binary.AppendByteOrder
} {
	if verb == verbHostU32 || verb == verbHostU16 {
		return binary.NativeEndian
	}
	return binary.BigEndian
}

// argList hands out the variadic arguments in order.
type argList struct {
	args []any
	next int
}

func (a *argList) take(verb byte) (any, error) {
	if a.next >= len(a.args) {
		return nil, errors.Wrapf(ErrFormat, "missing argument for %%%c", verb)
	}
	v := a.args[a.next]
	a.next++
	return v, nil
}

func (a *argList) done() error {
	if a.next != len(a.args) {
		return errors.Wrapf(ErrFormat, "%d extra arguments", len(a.args)-a.next)
	}
	return nil
}

// length resolves the length of d, consuming an argument for '*'.
func (a *argList) length(d directive) (int, error) {
	if !d.star {
		return d.length, nil
	}
	v, err := a.take(d.verb)
	if err != nil {
		return 0, err
	}
	n, ok := toUint(v)
	if !ok || n > 1<<31 {
		return 0, errors.Wrapf(ErrFormat, "length argument for %%%c must be a non-negative integer, got %T", d.verb, v)
	}
	return int(n), nil
}

func toUint(v any) (uint64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, false
		}
		return uint64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	}
	return 0, false
}

func checkIntLen(verb byte, n int) error {
	if n != noLen && n != intSize(verb) {
		return errors.Wrapf(ErrFormat, "%%%c takes %d bytes, length %d given", verb, intSize(verb), n)
	}
	return nil
}

// Pack encodes args as described by format and writes them at the offset.
// Nothing is written unless the whole format succeeds.
func (b *Blob) Pack(format string, args ...any) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	ds, err := parseFormat(format)
	if err != nil {
		return 0, err
	}

	al := &argList{args: args}
	var out []byte
	for _, d := range ds {
		if d.verb == 0 {
			out = append(out, d.literal)
			continue
		}
		n, err := al.length(d)
		if err != nil {
			return 0, err
		}
		v, err := al.take(d.verb)
		if err != nil {
			return 0, err
		}
		if out, err = packOne(out, d.verb, n, v); err != nil {
			return 0, err
		}
	}
	if err := al.done(); err != nil {
		return 0, err
	}

	return b.Write(out)
}

func packOne(out []byte, verb byte, n int, v any) ([]byte, error) {
	switch verb {
	case verbNetU32, verbNetU16, verbByte, verbHostU32, verbHostU16:
		if err := checkIntLen(verb, n); err != nil {
			return nil, err
		}
		u, ok := toUint(v)
		size := intSize(verb)
		if !ok || u>>(size*8) != 0 {
			return nil, errors.Wrapf(ErrFormat, "%%%c cannot hold %v", verb, v)
		}
		switch size {
		case 4:
			return byteOrder(verb).AppendUint32(out, uint32(u)), nil
		case 2:
			return byteOrder(verb).AppendUint16(out, uint16(u)), nil
		}
		return append(out, uint8(u)), nil

	case verbBuf:
		p, ok := asBytes(v)
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "%%b needs []byte or string, got %T", v)
		}
		if n == noLen {
			return nil, errors.Wrap(ErrFormat, "%b needs a length")
		}
		if len(p) < n {
			return nil, errors.Wrapf(ErrFormat, "%%b of length %d given %d bytes", n, len(p))
		}
		return append(out, p[:n]...), nil

	case verbString:
		p, ok := asBytes(v)
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "%%s needs string or []byte, got %T", v)
		}
		if i := bytes.IndexByte(p, 0); i >= 0 {
			p = p[:i]
		}
		if n == noLen {
			out = append(out, p...)
			return append(out, 0), nil
		}
		if n == 0 {
			return nil, errors.Wrap(ErrFormat, "%s of length 0")
		}
		// Exactly n bytes, truncated or padded, always NUL-terminated.
		field := make([]byte, n)
		copy(field[:n-1], p)
		return append(out, field...), nil
	}
	return nil, errors.Wrapf(ErrFormat, "unknown directive %%%c", verb)
}

func asBytes(v any) ([]byte, bool) {
	switch v := v.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}

// Unpack decodes values at the offset as described by format into dests:
// *uint32 for D and d, *uint16 for H and h, *uint8 for c, []byte or *[]byte
// for b, and *string for s. A '*' length takes an int from dests. Nothing
// is assigned and the offset does not move unless the whole format succeeds.
func (b *Blob) Unpack(format string, dests ...any) error {
	if err := b.check(); err != nil {
		return err
	}
	ds, err := parseFormat(format)
	if err != nil {
		return err
	}

	al := &argList{args: dests}
	off := b.off
	var assigns []func()
	for _, d := range ds {
		if d.verb == 0 {
			if off >= len(b.data) || b.data[off] != d.literal {
				return errors.Wrapf(ErrFormat, "expected %q at offset %d", d.literal, off)
			}
			off++
			continue
		}
		n, err := al.length(d)
		if err != nil {
			return err
		}
		dst, err := al.take(d.verb)
		if err != nil {
			return err
		}
		assign, used, err := unpackOne(b.data[off:], d.verb, n, dst)
		if err != nil {
			return errors.Wrapf(err, "at offset %d", off)
		}
		assigns = append(assigns, assign)
		off += used
	}
	if err := al.done(); err != nil {
		return err
	}

	for _, assign := range assigns {
		assign()
	}
	b.off = off
	return nil
}

func unpackOne(src []byte, verb byte, n int, dst any) (func(), int, error) {
	short := func(need int) error {
		return errors.Wrapf(ErrFormat, "%%%c needs %d bytes, %d left", verb, need, len(src))
	}

	switch verb {
	case verbNetU32, verbHostU32:
		if err := checkIntLen(verb, n); err != nil {
			return nil, 0, err
		}
		p, ok := dst.(*uint32)
		if !ok {
			return nil, 0, errors.Wrapf(ErrFormat, "%%%c needs *uint32, got %T", verb, dst)
		}
		if len(src) < 4 {
			return nil, 0, short(4)
		}
		v := byteOrder(verb).Uint32(src)
		return func() { *p = v }, 4, nil

	case verbNetU16, verbHostU16:
		if err := checkIntLen(verb, n); err != nil {
			return nil, 0, err
		}
		p, ok := dst.(*uint16)
		if !ok {
			return nil, 0, errors.Wrapf(ErrFormat, "%%%c needs *uint16, got %T", verb, dst)
		}
		if len(src) < 2 {
			return nil, 0, short(2)
		}
		v := byteOrder(verb).Uint16(src)
		return func() { *p = v }, 2, nil

	case verbByte:
		if err := checkIntLen(verb, n); err != nil {
			return nil, 0, err
		}
		p, ok := dst.(*uint8)
		if !ok {
			return nil, 0, errors.Wrapf(ErrFormat, "%%c needs *uint8, got %T", dst)
		}
		if len(src) < 1 {
			return nil, 0, short(1)
		}
		v := src[0]
		return func() { *p = v }, 1, nil

	case verbBuf:
		if n == noLen {
			return nil, 0, errors.Wrap(ErrFormat, "%b needs a length")
		}
		if len(src) < n {
			return nil, 0, short(n)
		}
		v := bytes.Clone(src[:n])
		switch p := dst.(type) {
		case []byte:
			if len(p) < n {
				return nil, 0, errors.Wrapf(ErrFormat, "%%b of length %d into %d bytes", n, len(p))
			}
			return func() { copy(p, v) }, n, nil
		case *[]byte:
			return func() { *p = v }, n, nil
		}
		return nil, 0, errors.Wrapf(ErrFormat, "%%b needs []byte or *[]byte, got %T", dst)

	case verbString:
		p, ok := dst.(*string)
		if !ok {
			return nil, 0, errors.Wrapf(ErrFormat, "%%s needs *string, got %T", dst)
		}
		if n == noLen || n == 0 {
			return nil, 0, errors.Wrap(ErrFormat, "%s needs a maximum length to unpack")
		}
		limit := min(n, len(src))
		i := bytes.IndexByte(src[:limit], 0)
		if i < 0 {
			return nil, 0, errors.Wrapf(ErrFormat, "no NUL within %d bytes", limit)
		}
		v := string(src[:i])
		return func() { *p = v }, i + 1, nil
	}
	return nil, 0, errors.Wrapf(ErrFormat, "unknown directive %%%c", verb)
}
