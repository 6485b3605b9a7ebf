// Package eth implements Ethernet II addresses and headers, and a handle for
// sending raw frames on a network interface.
package eth

import (
	"dnet/lib/codec"
	"dnet/lib/symtab"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	AddrLen   = 6
	AddrBits  = 48
	TypeLen   = 2
	CRCLen    = 4
	HeaderLen = 2*AddrLen + TypeLen

	MinLen = 64
	MaxLen = 1518
	MTU    = 1500
)

type Addr [AddrLen]byte

var AddrBroadcast = Addr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ParseAddr parses six hex octets separated by ':' or '-'. Single digit
// octets are accepted.
func ParseAddr(s string) (Addr, error) {
	sep := ":"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	octets := strings.Split(s, sep)
	if len(octets) != AddrLen {
		return Addr{}, errors.Errorf("expected %d octets in %q", AddrLen, s)
	}

	var addr Addr
	for idx, octet := range octets {
		if len(octet) == 1 {
			octet = "0" + octet
		}
		if len(octet) != 2 {
			return Addr{}, errors.Errorf("invalid octet %q", octet)
		}
		if _, err := hex.Decode(addr[idx:idx+1], []byte(octet)); err != nil {
			return Addr{}, errors.Wrap(err, "failed to parse hex")
		}
	}
	return addr, nil
}

func (a Addr) Raw() []byte { return a[:] }

func (a Addr) String() string {
	b := make([]byte, 0, 3*AddrLen-1)
	for idx, n := range a {
		if idx > 0 {
			b = append(b, ':')
		}
		b = hex.AppendEncode(b, []byte{n})
	}
	return string(b)
}

func (a Addr) IsBroadcast() bool { return a == AddrBroadcast }
func (a Addr) IsMulticast() bool { return a[0]&0x01 != 0 }

type Type uint16

// Reference: https://www.iana.org/assignments/ieee-802-numbers
const (
	TypePUP       Type = 0x0200
	TypeIP        Type = 0x0800
	TypeARP       Type = 0x0806
	TypeRevARP    Type = 0x8035
	Type8021Q     Type = 0x8100
	TypeIPv6      Type = 0x86dd
	TypeMPLS      Type = 0x8847
	TypeMPLSMcast Type = 0x8848
	TypePPPoEDisc Type = 0x8863
	TypePPPoE     Type = 0x8864
	TypeLoopback  Type = 0x9000
)

var Types = symtab.New(
	symtab.Entry[Type]{Name: "pup", Value: TypePUP},
	symtab.Entry[Type]{Name: "ip", Value: TypeIP},
	symtab.Entry[Type]{Name: "arp", Value: TypeARP},
	symtab.Entry[Type]{Name: "revarp", Value: TypeRevARP},
	symtab.Entry[Type]{Name: "8021q", Value: Type8021Q},
	symtab.Entry[Type]{Name: "ipv6", Value: TypeIPv6},
	symtab.Entry[Type]{Name: "mpls", Value: TypeMPLS},
	symtab.Entry[Type]{Name: "mpls-mcast", Value: TypeMPLSMcast},
	symtab.Entry[Type]{Name: "pppoe-disc", Value: TypePPPoEDisc},
	symtab.Entry[Type]{Name: "pppoe", Value: TypePPPoE},
	symtab.Entry[Type]{Name: "loopback", Value: TypeLoopback},
)

func (t Type) String() string { return Types.String(t) }

// IsLen reports whether t is an 802.3 length field rather than a type.
func (t Type) IsLen() bool { return t <= MTU }

type Header struct {
	Dst  Addr
	Src  Addr
	Type Type
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("ethernet header", b, HeaderLen); err != nil {
		return Header{}, err
	}

	var h Header
	copy(h.Dst[:], b[0:6])
	copy(h.Src[:], b[6:12])
	h.Type = Type(binary.BigEndian.Uint16(b[12:14]))
	return h, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = append(b, h.Dst[:]...)
	b = append(b, h.Src[:]...)
	return binary.BigEndian.AppendUint16(b, uint16(h.Type))
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}

// Frame returns a frame carrying payload under h.
func Frame(h Header, payload []byte) []byte {
	return append(h.AppendTo(make([]byte, 0, HeaderLen+len(payload))), payload...)
}
