package addr

import (
	"dnet/link/eth"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// FromNetIP converts ip. IPv4-mapped IPv6 addresses become IPv4 addresses.
func FromNetIP(ip netip.Addr) Addr {
	ip = ip.Unmap()
	if ip.Is4() {
		return FromIPv4(ip.As4())
	}
	if ip.Is6() {
		return FromIPv6(ip.As16())
	}
	return Addr{}
}

func FromPrefix(p netip.Prefix) (Addr, error) {
	if !p.IsValid() {
		return Addr{}, errors.Wrapf(ErrParse, "invalid prefix %s", p)
	}
	bits := p.Bits()
	if p.Addr().Is4In6() {
		bits -= 96
	}
	return FromNetIP(p.Addr()).WithBits(bits)
}

// NetIP returns a as a netip.Addr, dropping the prefix length.
func (a Addr) NetIP() (netip.Addr, bool) {
	switch a.typ {
	case TypeIP:
		ip, _ := a.IPv4()
		return netip.AddrFrom4(ip), true
	case TypeIP6:
		return netip.AddrFrom16(a.data), true
	}
	return netip.Addr{}, false
}

func (a Addr) Prefix() (netip.Prefix, error) {
	ip, ok := a.NetIP()
	if !ok {
		return netip.Prefix{}, errors.Wrapf(ErrNotApplicable, "prefix of %s address", a.typ)
	}
	return netip.PrefixFrom(ip, int(a.bits)), nil
}

// FromIP converts a 4 or 16 byte net.IP.
func FromIP(ip net.IP) (Addr, error) {
	if v4 := ip.To4(); v4 != nil {
		return New(TypeIP, v4, 32)
	}
	if len(ip) == net.IPv6len {
		return New(TypeIP6, ip, 128)
	}
	return Addr{}, errors.Wrapf(ErrParse, "invalid ip length %d", len(ip))
}

// FromIPNet converts n, taking the prefix length from its mask.
func FromIPNet(n *net.IPNet) (Addr, error) {
	if n == nil {
		return Addr{}, errors.Wrap(ErrParse, "nil network")
	}
	a, err := FromIP(n.IP)
	if err != nil {
		return Addr{}, err
	}
	ones, size := n.Mask.Size()
	if size == 0 {
		return Addr{}, errors.Wrapf(ErrParse, "non-canonical mask %s", n.Mask)
	}
	if a.typ == TypeIP && size == 128 {
		ones -= 96
	}
	return a.WithBits(ones)
}

func (a Addr) IP() (net.IP, bool) {
	switch a.typ {
	case TypeIP, TypeIP6:
		return net.IP(a.Raw()), true
	}
	return nil, false
}

func (a Addr) IPNet() (*net.IPNet, error) {
	ip, ok := a.IP()
	if !ok {
		return nil, errors.Wrapf(ErrNotApplicable, "network of %s address", a.typ)
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(int(a.bits), a.typ.Width())}, nil
}

func FromHardwareAddr(hw net.HardwareAddr) (Addr, error) {
	if len(hw) != eth.AddrLen {
		return Addr{}, errors.Wrapf(ErrParse, "hardware address %s is not ethernet", hw)
	}
	return FromEth(eth.Addr(hw)), nil
}

func (a Addr) HardwareAddr() (net.HardwareAddr, bool) {
	if a.typ != TypeEth {
		return nil, false
	}
	return net.HardwareAddr(a.Raw()), true
}
