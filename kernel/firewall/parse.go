package firewall

import (
	"dnet/addr"
	"dnet/network/ip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrSyntax = errors.New("invalid rule")

// ParseRule reads a rule in the dnet command form:
//
//	allow|block in|out <device>|any <proto> <src>[:<port>[-<max>]] <dst>[:<port>[-<max>]]
//
// "any" stands for every device or address. Ports are only accepted for tcp
// and udp.
func ParseRule(args []string) (Rule, error) {
	if len(args) != 6 {
		return Rule{}, errors.Wrapf(ErrSyntax, "want 6 fields, got %d", len(args))
	}

	var (
		r  Rule
		ok bool
	)
	if r.Op, ok = Ops.Value(args[0]); !ok {
		return Rule{}, errors.Wrapf(ErrSyntax, "action %q", args[0])
	}
	if r.Dir, ok = Dirs.Value(args[1]); !ok {
		return Rule{}, errors.Wrapf(ErrSyntax, "direction %q", args[1])
	}
	if args[2] != "any" {
		r.Device = args[2]
	}
	if args[3] != "ip" {
		if r.Proto, ok = ip.Protocols.Parse(args[3]); !ok {
			return Rule{}, errors.Wrapf(ErrSyntax, "protocol %q", args[3])
		}
	}

	var err error
	if r.Src, r.Sport, err = parseEndpoint(args[4], r.Proto); err != nil {
		return Rule{}, err
	}
	if r.Dst, r.Dport, err = parseEndpoint(args[5], r.Proto); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func parseEndpoint(s string, proto ip.NextProto) (addr.Addr, [2]uint16, error) {
	host, port, hasPort := strings.Cut(s, ":")
	if hasPort && !hasPorts(proto) {
		return addr.Addr{}, [2]uint16{}, errors.Wrapf(ErrSyntax, "port in %q needs tcp or udp", s)
	}

	var a addr.Addr
	if host != "any" {
		var err error
		if a, err = addr.ParseLiteral(host); err != nil {
			return addr.Addr{}, [2]uint16{}, errors.Wrapf(ErrSyntax, "address %q", host)
		}
		if a.Type() != addr.TypeIP {
			return addr.Addr{}, [2]uint16{}, errors.Wrapf(ErrSyntax, "address %q is not ipv4", host)
		}
	}

	ports := PortAny
	if hasPort {
		lo, hi, isRange := strings.Cut(port, "-")
		first, err := strconv.ParseUint(lo, 10, 16)
		if err != nil {
			return addr.Addr{}, [2]uint16{}, errors.Wrapf(ErrSyntax, "port %q", port)
		}
		last := first
		if isRange {
			if last, err = strconv.ParseUint(hi, 10, 16); err != nil || last < first {
				return addr.Addr{}, [2]uint16{}, errors.Wrapf(ErrSyntax, "port %q", port)
			}
		}
		ports = [2]uint16{uint16(first), uint16(last)}
	}
	if !hasPorts(proto) {
		ports = [2]uint16{}
	}
	return a, ports, nil
}
