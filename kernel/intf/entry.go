package intf

import (
	"dnet/addr"
	"dnet/lib/symtab"
	"strings"
)

type Type uint16

const (
	TypeOther    Type = 1
	TypeEth      Type = 6
	TypeLoopback Type = 24
	TypeTun      Type = 53
)

var Types = symtab.New(
	symtab.Entry[Type]{Name: "other", Value: TypeOther},
	symtab.Entry[Type]{Name: "eth", Value: TypeEth},
	symtab.Entry[Type]{Name: "loopback", Value: TypeLoopback},
	symtab.Entry[Type]{Name: "tun", Value: TypeTun},
)

func (t Type) String() string               { return Types.String(t) }
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

type Flags uint16

const (
	FlagUp           Flags = 0x01
	FlagLoopback     Flags = 0x02
	FlagPointToPoint Flags = 0x04
	FlagNoARP        Flags = 0x08
	FlagBroadcast    Flags = 0x10
	FlagMulticast    Flags = 0x20
)

var FlagNames = symtab.New(
	symtab.Entry[Flags]{Name: "up", Value: FlagUp},
	symtab.Entry[Flags]{Name: "loopback", Value: FlagLoopback},
	symtab.Entry[Flags]{Name: "pointopoint", Value: FlagPointToPoint},
	symtab.Entry[Flags]{Name: "noarp", Value: FlagNoARP},
	symtab.Entry[Flags]{Name: "broadcast", Value: FlagBroadcast},
	symtab.Entry[Flags]{Name: "multicast", Value: FlagMulticast},
)

func (f Flags) String() string { return strings.Join(FlagNames.Flags(f), ",") }

func (f Flags) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// Entry describes one network interface. Addr is the primary address and
// Aliases holds every other one.
type Entry struct {
	Index    int         `yaml:"index"`
	Name     string      `yaml:"name"`
	Type     Type        `yaml:"type"`
	Flags    Flags       `yaml:"flags"`
	MTU      int         `yaml:"mtu"`
	Addr     addr.Addr   `yaml:"addr"`
	DstAddr  addr.Addr   `yaml:"dst_addr"`
	LinkAddr addr.Addr   `yaml:"link_addr"`
	Aliases  []addr.Addr `yaml:"aliases,omitempty"`
}

// Has reports whether a is one of e's addresses. Prefix lengths are ignored.
func (e Entry) Has(a addr.Addr) bool {
	for _, b := range append([]addr.Addr{e.Addr}, e.Aliases...) {
		if sameHost(a, b) {
			return true
		}
	}
	return false
}

func sameHost(a, b addr.Addr) bool {
	if a.Type() != b.Type() || a.IsZero() {
		return false
	}
	wa, _ := a.WithBits(a.Type().Width())
	wb, _ := b.WithBits(b.Type().Width())
	return wa == wb
}
