// Package addr implements a network address that is one of an Ethernet,
// IPv4 or IPv6 address, together with a prefix length.
package addr

import (
	"bytes"
	"dnet/link/eth"
	ipv4 "dnet/network/ip/v4"
	ipv6 "dnet/network/ip/v6"
	"strconv"

	"github.com/pkg/errors"
)

var (
	ErrParse         = errors.New("invalid address")
	ErrTypeMismatch  = errors.New("address type mismatch")
	ErrNotApplicable = errors.New("not applicable to address type")
)

type Type uint16

const (
	TypeNone Type = iota
	TypeEth
	TypeIP
	TypeIP6
)

func (t Type) String() string {
	switch t {
	case TypeEth:
		return "eth"
	case TypeIP:
		return "ip"
	case TypeIP6:
		return "ip6"
	}
	return "none"
}

// Size returns the length of the binary form in bytes.
func (t Type) Size() int {
	switch t {
	case TypeEth:
		return eth.AddrLen
	case TypeIP:
		return ipv4.AddrLen
	case TypeIP6:
		return ipv6.AddrLen
	}
	return 0
}

// Width returns the number of bits of the binary form.
func (t Type) Width() int { return t.Size() * 8 }

// Addr is a comparable value. The zero value has TypeNone.
type Addr struct {
	typ  Type
	bits uint16
	data [ipv6.AddrLen]byte
}

// New builds an address of type typ from its binary form. bits must not
// exceed the width of typ.
func New(typ Type, raw []byte, bits int) (Addr, error) {
	if typ == TypeNone || typ.Size() == 0 {
		return Addr{}, errors.Wrapf(ErrParse, "unknown address type %d", typ)
	}
	if len(raw) != typ.Size() {
		return Addr{}, errors.Wrapf(ErrParse, "%s address needs %d bytes, got %d", typ, typ.Size(), len(raw))
	}
	a := Addr{typ: typ}
	copy(a.data[:], raw)
	return a.WithBits(bits)
}

func FromEth(e eth.Addr) Addr {
	a := Addr{typ: TypeEth, bits: eth.AddrBits}
	copy(a.data[:], e[:])
	return a
}

func FromIPv4(ip ipv4.Addr) Addr {
	a := Addr{typ: TypeIP, bits: ipv4.AddrBits}
	copy(a.data[:], ip[:])
	return a
}

func FromIPv6(ip ipv6.Addr) Addr {
	return Addr{typ: TypeIP6, bits: ipv6.AddrBits, data: ip}
}

func (a Addr) Type() Type   { return a.typ }
func (a Addr) Bits() int    { return int(a.bits) }
func (a Addr) IsZero() bool { return a == Addr{} }

// Raw returns a copy of the binary form.
func (a Addr) Raw() []byte { return bytes.Clone(a.data[:a.typ.Size()]) }

func (a Addr) Eth() (eth.Addr, bool) {
	return eth.Addr(a.data[:eth.AddrLen]), a.typ == TypeEth
}

func (a Addr) IPv4() (ipv4.Addr, bool) {
	return ipv4.Addr(a.data[:ipv4.AddrLen]), a.typ == TypeIP
}

func (a Addr) IPv6() (ipv6.Addr, bool) {
	return ipv6.Addr(a.data), a.typ == TypeIP6
}

// WithBits returns a with its prefix length replaced.
func (a Addr) WithBits(bits int) (Addr, error) {
	if bits < 0 || bits > a.typ.Width() {
		return Addr{}, errors.Wrapf(ErrParse, "prefix length %d out of range for %s address", bits, a.typ)
	}
	a.bits = uint16(bits)
	return a, nil
}

// String formats a canonically. The prefix length is appended when it is
// shorter than the address, so the result parses back to a.
func (a Addr) String() string {
	var s string
	switch a.typ {
	case TypeEth:
		e, _ := a.Eth()
		s = e.String()
	case TypeIP:
		ip, _ := a.IPv4()
		s = ip.String()
	case TypeIP6:
		ip, _ := a.IPv6()
		s = ip.String()
	default:
		return ""
	}
	if int(a.bits) < a.typ.Width() {
		s += "/" + strconv.Itoa(int(a.bits))
	}
	return s
}

func (a Addr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Addr) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Addr{}
		return nil
	}
	parsed, err := ParseLiteral(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Mask returns the netmask of a as a full-width address of the same type.
func (a Addr) Mask() (Addr, error) {
	if a.typ == TypeNone {
		return Addr{}, errors.Wrap(ErrNotApplicable, "mask of empty address")
	}
	m := Addr{typ: a.typ, bits: uint16(a.typ.Width())}
	fillMask(m.data[:a.typ.Size()], int(a.bits))
	return m, nil
}

// Network clears the host bits of a. The prefix length is kept.
func (a Addr) Network() (Addr, error) {
	m, err := a.Mask()
	if err != nil {
		return Addr{}, err
	}
	for i := range a.typ.Size() {
		a.data[i] &= m.data[i]
	}
	return a, nil
}

// Broadcast sets the host bits of an IPv4 address. IPv6 has no broadcast
// address, so any other type yields ErrNotApplicable.
func (a Addr) Broadcast() (Addr, error) {
	if a.typ != TypeIP {
		return Addr{}, errors.Wrapf(ErrNotApplicable, "broadcast of %s address", a.typ)
	}
	m, _ := a.Mask()
	for i := range ipv4.AddrLen {
		a.data[i] |= ^m.data[i]
	}
	return a, nil
}

// Contains reports whether b lies in the network of a.
func (a Addr) Contains(b Addr) bool {
	if a.typ != b.typ || a.typ == TypeNone {
		return false
	}
	b.bits = a.bits
	na, _ := a.Network()
	nb, _ := b.Network()
	return na == nb
}

// Compare orders a and b by their binary form, then by prefix length. Both
// must have the same type.
func Compare(a, b Addr) (int, error) {
	if a.typ != b.typ {
		return 0, errors.Wrapf(ErrTypeMismatch, "comparing %s with %s", a.typ, b.typ)
	}
	if c := bytes.Compare(a.data[:a.typ.Size()], b.data[:b.typ.Size()]); c != 0 {
		return c, nil
	}
	switch {
	case a.bits < b.bits:
		return -1, nil
	case a.bits > b.bits:
		return 1, nil
	}
	return 0, nil
}

func (a Addr) Equal(b Addr) bool { return a == b }
