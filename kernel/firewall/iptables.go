package firewall

import (
	"dnet/addr"
	"dnet/network/ip"
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	filterTable = "filter"
	inputChain  = "INPUT"
	outputChain = "OUTPUT"
)

var errUnsupported = errors.New("rule cannot be expressed")

func chainOf(d Dir) (string, error) {
	switch d {
	case DirIn:
		return inputChain, nil
	case DirOut:
		return outputChain, nil
	}
	return "", errors.Wrapf(errUnsupported, "direction %s", d)
}

func prefixString(a addr.Addr) (string, error) {
	p, err := a.Prefix()
	if err != nil {
		return "", errors.Wrapf(errUnsupported, "address %s", a)
	}
	if p.Addr().Is6() {
		return "", errors.Wrapf(errUnsupported, "ipv6 address %s", a)
	}
	return p.Masked().String(), nil
}

// spec encodes r as an iptables rule specification and returns the chain
// it belongs in.
func spec(r Rule) (string, []string, error) {
	chain, err := chainOf(r.Dir)
	if err != nil {
		return "", nil, err
	}

	var args []string
	if r.Device != "" {
		flag := "-i"
		if r.Dir == DirOut {
			flag = "-o"
		}
		args = append(args, flag, r.Device)
	}
	if r.Proto != 0 {
		args = append(args, "-p", r.Proto.String())
	}
	for _, a := range []struct {
		flag string
		addr addr.Addr
	}{{"-s", r.Src}, {"-d", r.Dst}} {
		if a.addr.IsZero() {
			continue
		}
		s, err := prefixString(a.addr)
		if err != nil {
			return "", nil, err
		}
		args = append(args, a.flag, s)
	}

	if !anyPort(r.Sport) || !anyPort(r.Dport) {
		if !hasPorts(r.Proto) {
			return "", nil, errors.Wrapf(errUnsupported, "ports with protocol %s", r.Proto)
		}
		if !anyPort(r.Sport) {
			args = append(args, "--sport", formatPorts(r.Sport, ":"))
		}
		if !anyPort(r.Dport) {
			args = append(args, "--dport", formatPorts(r.Dport, ":"))
		}
	}

	switch r.Op {
	case OpAllow:
		args = append(args, "-j", "ACCEPT")
	case OpBlock:
		args = append(args, "-j", "DROP")
	default:
		return "", nil, errors.Wrapf(errUnsupported, "operation %s", r.Op)
	}
	return chain, args, nil
}

func parsePorts(s string) ([2]uint16, error) {
	lo, hi, isRange := strings.Cut(s, ":")
	a, err := strconv.ParseUint(lo, 10, 16)
	if err != nil {
		return [2]uint16{}, errors.Wrapf(errUnsupported, "port %q", s)
	}
	if !isRange {
		return [2]uint16{uint16(a), uint16(a)}, nil
	}
	b, err := strconv.ParseUint(hi, 10, 16)
	if err != nil {
		return [2]uint16{}, errors.Wrapf(errUnsupported, "port %q", s)
	}
	return [2]uint16{uint16(a), uint16(b)}, nil
}

func parsePrefix(s string) (addr.Addr, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		ip, err := netip.ParseAddr(s)
		if err != nil {
			return addr.Addr{}, errors.Wrapf(errUnsupported, "address %q", s)
		}
		return addr.FromNetIP(ip), nil
	}
	return addr.FromPrefix(p)
}

// parse decodes one line of `iptables -S` output. Rules using anything
// beyond interface, protocol, address and port matches with an ACCEPT,
// DROP or REJECT target return errUnsupported.
func parse(line string) (Rule, error) {
	f := strings.Fields(line)
	if len(f) < 2 || f[0] != "-A" {
		return Rule{}, errors.Wrap(errUnsupported, "not a rule")
	}

	var r Rule
	switch f[1] {
	case inputChain:
		r.Dir = DirIn
	case outputChain:
		r.Dir = DirOut
	default:
		return Rule{}, errors.Wrapf(errUnsupported, "chain %s", f[1])
	}

	for i := 2; i < len(f); i += 2 {
		if i+1 >= len(f) {
			return Rule{}, errors.Wrapf(errUnsupported, "dangling %s", f[i])
		}
		flag, val := f[i], f[i+1]

		var err error
		switch flag {
		case "-i", "-o":
			r.Device = val
		case "-p":
			p, ok := ip.Protocols.Parse(val)
			if !ok {
				return Rule{}, errors.Wrapf(errUnsupported, "protocol %s", val)
			}
			r.Proto = p
		case "-s":
			r.Src, err = parsePrefix(val)
		case "-d":
			r.Dst, err = parsePrefix(val)
		case "-m":
			if val != "tcp" && val != "udp" {
				return Rule{}, errors.Wrapf(errUnsupported, "match %s", val)
			}
		case "--sport", "--sports":
			r.Sport, err = parsePorts(val)
		case "--dport", "--dports":
			r.Dport, err = parsePorts(val)
		case "--reject-with":
		case "-j":
			switch val {
			case "ACCEPT":
				r.Op = OpAllow
			case "DROP", "REJECT":
				r.Op = OpBlock
			default:
				return Rule{}, errors.Wrapf(errUnsupported, "target %s", val)
			}
		default:
			return Rule{}, errors.Wrapf(errUnsupported, "option %s", flag)
		}
		if err != nil {
			return Rule{}, err
		}
	}
	if r.Op == 0 {
		return Rule{}, errors.Wrap(errUnsupported, "no target")
	}
	return r, nil
}
