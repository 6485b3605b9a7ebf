// Package option handles the type-length-value option lists that follow the
// fixed IPv4 and TCP headers. Both protocols share the layout: kinds 0 (end of
// list) and 1 (no-op) are a single byte, every other kind carries a length
// byte that counts the kind and length bytes themselves.
package option

import (
	"dnet/lib/codec"

	"github.com/pkg/errors"
)

const (
	EOL uint8 = 0
	NOP uint8 = 1

	// MaxArea is the largest option area either protocol allows.
	MaxArea = 40
)

var ErrInvalid = errors.New("invalid option")

type Option struct {
	Type uint8
	Data []byte
}

func TypeOnly(t uint8) bool { return t == EOL || t == NOP }

// Len returns the encoded size of o.
func (o Option) Len() int {
	if TypeOnly(o.Type) {
		return 1
	}
	return 2 + len(o.Data)
}

func (o Option) AppendTo(b []byte) []byte {
	if TypeOnly(o.Type) {
		return append(b, o.Type)
	}
	b = append(b, o.Type, uint8(2+len(o.Data)))
	return append(b, o.Data...)
}

func (o Option) Encode() []byte {
	return o.AppendTo(make([]byte, 0, o.Len()))
}

// Parse decodes an option area. Parsing stops at the first EOL; trailing
// padding after it is ignored.
func Parse(b []byte) ([]Option, error) {
	var opts []Option
	for len(b) > 0 {
		t := b[0]
		if t == EOL {
			break
		}
		if t == NOP {
			opts = append(opts, Option{Type: NOP})
			b = b[1:]
			continue
		}
		if len(b) < 2 {
			return nil, codec.Truncated("option", 2, len(b))
		}
		l := int(b[1])
		if l < 2 {
			return nil, errors.Wrapf(ErrInvalid, "kind %d: length %d", t, l)
		}
		if len(b) < l {
			return nil, codec.Truncated("option", l, len(b))
		}
		data := make([]byte, l-2)
		copy(data, b[2:l])
		opts = append(opts, Option{Type: t, Data: data})
		b = b[l:]
	}
	return opts, nil
}

// Encode concatenates opts and pads the result with EOL to a 4-byte boundary.
// It fails if the area would exceed MaxArea.
func Encode(opts []Option) ([]byte, error) {
	var b []byte
	for _, o := range opts {
		if !TypeOnly(o.Type) && 2+len(o.Data) > 0xff {
			return nil, errors.Wrapf(ErrInvalid, "kind %d: data too long", o.Type)
		}
		b = o.AppendTo(b)
	}
	for len(b)%4 != 0 {
		b = append(b, EOL)
	}
	if len(b) > MaxArea {
		return nil, errors.Wrapf(codec.ErrCapacity, "option area %d > %d", len(b), MaxArea)
	}
	return b, nil
}

// Padding returns the number of bytes needed to round n up to 4.
func Padding(n int) int {
	return (4 - n%4) % 4
}
