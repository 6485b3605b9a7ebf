// Package nl is the netlink port the kernel table mirrors talk through.
// Client lists the subset of github.com/vishvananda/netlink they need, so a
// fake can stand in for the kernel in tests.
package nl

import (
	"net"

	"github.com/vishvananda/netlink"
)

// Address families, as used by the linux netlink API.
const (
	FamilyAll = 0
	FamilyV4  = 2  // AF_INET
	FamilyV6  = 10 // AF_INET6
)

// Neighbour states (NUD_*).
const (
	NeighIncomplete = 0x01
	NeighFailed     = 0x20
	NeighNoARP      = 0x40
	NeighPermanent  = 0x80
)

type Client interface {
	LinkList() ([]netlink.Link, error)
	LinkByName(name string) (netlink.Link, error)
	LinkByIndex(index int) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	LinkSetMTU(link netlink.Link, mtu int) error
	LinkSetHardwareAddr(link netlink.Link, hw net.HardwareAddr) error

	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error

	NeighList(linkIndex, family int) ([]netlink.Neigh, error)
	NeighAdd(neigh *netlink.Neigh) error
	NeighDel(neigh *netlink.Neigh) error

	RouteList(link netlink.Link, family int) ([]netlink.Route, error)
	RouteGet(dst net.IP) ([]netlink.Route, error)
	RouteAdd(route *netlink.Route) error
	RouteDel(route *netlink.Route) error

	Close() error
}

// Family returns the address family of ip.
func Family(ip net.IP) int {
	if ip.To4() != nil {
		return FamilyV4
	}
	return FamilyV6
}
