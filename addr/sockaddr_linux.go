//go:build linux

package addr

import (
	"dnet/link/eth"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ToSockaddr converts a to the socket address the kernel uses for its type.
func (a Addr) ToSockaddr() (unix.Sockaddr, error) {
	switch a.typ {
	case TypeEth:
		sa := &unix.SockaddrLinklayer{Hatype: unix.ARPHRD_ETHER, Halen: eth.AddrLen}
		copy(sa.Addr[:], a.data[:eth.AddrLen])
		return sa, nil
	case TypeIP:
		sa := &unix.SockaddrInet4{}
		copy(sa.Addr[:], a.data[:4])
		return sa, nil
	case TypeIP6:
		return &unix.SockaddrInet6{Addr: a.data}, nil
	}
	return nil, errors.Wrapf(ErrNotApplicable, "socket address of %s address", a.typ)
}

func FromSockaddr(sa unix.Sockaddr) (Addr, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return FromIPv4(sa.Addr), nil
	case *unix.SockaddrInet6:
		return FromIPv6(sa.Addr), nil
	case *unix.SockaddrLinklayer:
		if sa.Halen != eth.AddrLen {
			return Addr{}, errors.Wrapf(ErrParse, "link layer address of length %d", sa.Halen)
		}
		return FromEth(eth.Addr(sa.Addr[:eth.AddrLen])), nil
	}
	return Addr{}, errors.Wrapf(ErrParse, "unsupported socket address %T", sa)
}
