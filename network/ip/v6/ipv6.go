package ipv6

import (
	ipv4 "dnet/network/ip/v4"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	AddrLen  = 16
	AddrBits = 128
)

type Addr [AddrLen]byte

var (
	AddrUnspecified = Addr{}
	AddrLoopback    = Addr{15: 1}
)

var v4MappedPrefix = [12]byte{10: 0xff, 11: 0xff}

func ParseAddr(s string) (Addr, error) {
	before, after, found := strings.Cut(s, "::")
	var addr Addr

	if !found {
		addrBytes, err := parseAddrFrag(before, true)
		if err != nil {
			return Addr{}, err
		}
		if len(addrBytes) != AddrLen {
			return Addr{}, errors.New("length of address is not 128bit")
		}

		copy(addr[:], addrBytes)

		return addr, nil
	}

	// Parse each side of the two colons and fill the gap with zeros.
	frag1, err := parseAddrFrag(before, false)
	if err != nil {
		return Addr{}, errors.Wrap(err, "parsing fragment before ::")
	}
	frag2, err := parseAddrFrag(after, true)
	if err != nil {
		return Addr{}, errors.Wrap(err, "parsing fragment after ::")
	}

	if len(frag1)+len(frag2) > AddrLen-2 {
		// :: stands for at least one group.
		return Addr{}, errors.New("ipv6 address too long")
	}

	copy(addr[:len(frag1)], frag1)
	copy(addr[len(addr)-len(frag2):], frag2)

	return addr, nil
}

func parseAddrFrag(s string, isLast bool) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	h16s := strings.Split(s, ":")

	addr := make([]byte, 0, len(h16s)*2+2)
	for idx, h16 := range h16s {
		if h16 == "" {
			// 0:::, 0::0::
			return nil, errors.New("invalid use of colon seperator")
		}

		if isLast && idx == len(h16s)-1 && strings.Contains(h16, ".") {
			addrV4, err := ipv4.ParseAddr(h16)
			if err != nil {
				return nil, errors.Wrap(err,
					"non-hex item found on the last index, but wasn't ipv4 address",
				)
			}
			addr = append(addr, addrV4[:]...)
			break
		}

		if len(h16) > 4 {
			return nil, errors.Errorf("group %q longer than 4 digits", h16)
		}
		n, err := strconv.ParseUint(h16, 16, 16)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse hex")
		}
		addr = append(addr, byte(n>>8), byte(n))
	}

	return addr, nil
}

func (a Addr) Raw() []byte   { return a[:] }
func (a Addr) Version() uint { return 6 }

func (a Addr) group(i int) uint16 { return uint16(a[2*i])<<8 | uint16(a[2*i+1]) }

func (a Addr) IsUnspecified() bool { return a == AddrUnspecified }
func (a Addr) IsLoopback() bool    { return a == AddrLoopback }
func (a Addr) IsMulticast() bool   { return a[0] == 0xff }
func (a Addr) IsLinkLocal() bool   { return a[0] == 0xfe && a[1]&0xc0 == 0x80 }

// Is4In6 reports whether a is an IPv4-mapped address (::ffff:a.b.c.d).
func (a Addr) Is4In6() bool { return [12]byte(a[:12]) == v4MappedPrefix }

// V4 returns the embedded IPv4 address of an IPv4-mapped address.
func (a Addr) V4() (ipv4.Addr, bool) {
	if !a.Is4In6() {
		return ipv4.Addr{}, false
	}
	return ipv4.Addr(a[12:]), true
}

func AddrFrom4(v4 ipv4.Addr) Addr {
	var a Addr
	copy(a[:], v4MappedPrefix[:])
	copy(a[12:], v4[:])
	return a
}

// String formats a in the RFC 5952 canonical form: lowercase hex, leading
// zeros dropped, and the first longest run of two or more zero groups
// replaced by "::".
func (a Addr) String() string {
	if v4, ok := a.V4(); ok {
		return "::ffff:" + v4.String()
	}

	zStart, zLen := -1, 1
	for i := 0; i < 8; {
		if a.group(i) != 0 {
			i++
			continue
		}
		j := i
		for j < 8 && a.group(j) == 0 {
			j++
		}
		if j-i > zLen {
			zStart, zLen = i, j-i
		}
		i = j
	}

	b := make([]byte, 0, 39)
	for i := 0; i < 8; i++ {
		if i == zStart {
			b = append(b, ':', ':')
			i += zLen - 1
			continue
		}
		if i > 0 && i != zStart+zLen {
			b = append(b, ':')
		}
		b = strconv.AppendUint(b, uint64(a.group(i)), 16)
	}
	return string(b)
}
