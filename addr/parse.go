package addr

import (
	"context"
	"dnet/link/eth"
	ipv4 "dnet/network/ip/v4"
	ipv6 "dnet/network/ip/v6"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrResolve reports that a hostname could not be resolved. It is distinct
// from ErrParse, which is about the form of the text.
var ErrResolve = errors.New("cannot resolve host")

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Parser parses address text, resolving hostnames through Resolver.
type Parser struct {
	Resolver Resolver
}

// DefaultParser resolves hostnames with the system resolver.
var DefaultParser = Parser{Resolver: net.DefaultResolver}

// Parse parses an Ethernet, IPv4 or IPv6 address with an optional "/bits"
// suffix. Text that is not a literal address is treated as a hostname and
// resolved with DefaultParser, which may block on DNS.
func Parse(s string) (Addr, error) {
	return DefaultParser.Parse(context.Background(), s)
}

// ParseLiteral parses like Parse but never resolves hostnames.
func ParseLiteral(s string) (Addr, error) {
	return Parser{}.Parse(context.Background(), s)
}

func MustParse(s string) Addr {
	a, err := ParseLiteral(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (p Parser) Parse(ctx context.Context, s string) (Addr, error) {
	host, bitsText, hasBits := strings.Cut(s, "/")
	bits := -1
	if hasBits {
		n, ok := parseBits(bitsText)
		if !ok {
			return Addr{}, errors.Wrapf(ErrParse, "invalid prefix length in %q", s)
		}
		bits = n
	}

	a, err := p.parseHost(ctx, host)
	if err != nil {
		return Addr{}, err
	}
	if bits < 0 {
		return a, nil
	}
	a, err = a.WithBits(bits)
	if err != nil {
		return Addr{}, errors.Wrapf(err, "parsing %q", s)
	}
	return a, nil
}

func (p Parser) parseHost(ctx context.Context, s string) (Addr, error) {
	if s == "" {
		return Addr{}, errors.Wrap(ErrParse, "empty address")
	}
	if e, err := eth.ParseAddr(s); err == nil {
		return FromEth(e), nil
	}
	if ip, err := ipv4.ParseAddr(s); err == nil {
		return FromIPv4(ip), nil
	}
	if strings.Contains(s, ":") {
		ip, err := ipv6.ParseAddr(s)
		if err != nil {
			return Addr{}, errors.Wrapf(ErrParse, "%q: %v", s, err)
		}
		return FromIPv6(ip), nil
	}
	if p.Resolver == nil {
		return Addr{}, errors.Wrapf(ErrParse, "%q is not a literal address", s)
	}
	return p.resolve(ctx, s)
}

// resolve prefers an IPv4 answer, the way gethostbyname did.
func (p Parser) resolve(ctx context.Context, host string) (Addr, error) {
	ips, err := p.Resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return Addr{}, errors.Wrapf(ErrResolve, "%s: %v", host, err)
	}
	if len(ips) == 0 {
		return Addr{}, errors.Wrapf(ErrResolve, "%s: no addresses", host)
	}
	for _, ip := range ips {
		if ip.Unmap().Is4() {
			return FromNetIP(ip), nil
		}
	}
	return FromNetIP(ips[0]), nil
}

// parseBits accepts only canonical decimal: no sign and no leading zeros.
func parseBits(s string) (int, bool) {
	if s == "" || len(s) > 3 || (s[0] == '0' && len(s) > 1) {
		return 0, false
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
