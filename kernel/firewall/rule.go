package firewall

import (
	"dnet/addr"
	"dnet/lib/symtab"
	"dnet/network/ip"
	"strconv"
	"strings"
)

type Op uint8

const (
	OpAllow Op = iota + 1
	OpBlock
)

var Ops = symtab.New(
	symtab.Entry[Op]{Name: "allow", Value: OpAllow},
	symtab.Entry[Op]{Name: "block", Value: OpBlock},
)

func (o Op) String() string               { return Ops.String(o) }
func (o Op) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

type Dir uint8

const (
	DirIn Dir = iota + 1
	DirOut
)

var Dirs = symtab.New(
	symtab.Entry[Dir]{Name: "in", Value: DirIn},
	symtab.Entry[Dir]{Name: "out", Value: DirOut},
)

func (d Dir) String() string               { return Dirs.String(d) }
func (d Dir) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// PortAny is the port range that matches every port.
var PortAny = [2]uint16{0, 65535}

// Rule is one packet filter rule. An empty Device matches every interface,
// a zero Src or Dst matches every address and a zero Proto every protocol.
// Port ranges are inclusive and only apply to TCP and UDP.
type Rule struct {
	Device string       `yaml:"device,omitempty"`
	Op     Op           `yaml:"op"`
	Dir    Dir          `yaml:"dir"`
	Proto  ip.NextProto `yaml:"proto"`
	Src    addr.Addr    `yaml:"src"`
	Dst    addr.Addr    `yaml:"dst"`
	Sport  [2]uint16    `yaml:"sport,flow"`
	Dport  [2]uint16    `yaml:"dport,flow"`
}

func anyPort(p [2]uint16) bool { return p == [2]uint16{} || p == PortAny }

func hasPorts(p ip.NextProto) bool { return p == ip.NextProtoTCP || p == ip.NextProtoUDP }

func formatPorts(p [2]uint16, sep string) string {
	if p[1] == 0 || p[0] == p[1] {
		return strconv.Itoa(int(p[0]))
	}
	return strconv.Itoa(int(p[0])) + sep + strconv.Itoa(int(p[1]))
}

func formatAddr(a addr.Addr) string {
	if a.IsZero() {
		return "any"
	}
	return a.String()
}

// String renders r like "allow in on eth0 tcp from any to 10.0.0.1 port 22".
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Op.String() + " " + r.Dir.String())

	dev := r.Device
	if dev == "" {
		dev = "any"
	}
	b.WriteString(" on " + dev)

	proto := "ip"
	if r.Proto != 0 {
		proto = r.Proto.String()
	}
	b.WriteString(" " + proto)

	b.WriteString(" from " + formatAddr(r.Src))
	if hasPorts(r.Proto) && !anyPort(r.Sport) {
		b.WriteString(" port " + formatPorts(r.Sport, "-"))
	}
	b.WriteString(" to " + formatAddr(r.Dst))
	if hasPorts(r.Proto) && !anyPort(r.Dport) {
		b.WriteString(" port " + formatPorts(r.Dport, "-"))
	}
	return b.String()
}
