// Package arpcache mirrors the kernel's IPv4 neighbour (ARP) cache.
package arpcache

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/nl"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// Entry binds a protocol address to a hardware address.
type Entry struct {
	Proto addr.Addr `yaml:"proto"`
	Hw    addr.Addr `yaml:"hw"`
}

func (e Entry) String() string { return e.Proto.String() + " at " + e.Hw.String() }

type Cache struct {
	nl    nl.Client
	state kernel.State
}

var _ kernel.Table[addr.Addr, Entry] = (*Cache)(nil)

// Open connects to the running kernel. Reading the cache needs no
// privilege; Add and Delete need CAP_NET_ADMIN.
func Open(opts ...kernel.Option) (*Cache, error) {
	c, err := nl.Open()
	if err != nil {
		return nil, err
	}
	return New(c, opts...), nil
}

// New returns an open cache backed by c. Closing the cache closes c.
func New(c nl.Client, opts ...kernel.Option) *Cache {
	return &Cache{nl: c, state: kernel.Opened("arp", kernel.NewOptions(opts))}
}

func fromNeigh(n netlink.Neigh) (Entry, bool) {
	if n.State&(nl.NeighIncomplete|nl.NeighFailed) != 0 {
		return Entry{}, false
	}
	pa, err := addr.FromIP(n.IP)
	if err != nil || pa.Type() != addr.TypeIP {
		return Entry{}, false
	}
	ha, err := addr.FromHardwareAddr(n.HardwareAddr)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Proto: pa, Hw: ha}, true
}

func (c *Cache) neighs() ([]netlink.Neigh, error) {
	ns, err := c.nl.NeighList(0, nl.FamilyV4)
	if err != nil {
		return nil, kernel.Wrap("list neighbours", err)
	}
	return ns, nil
}

// Loop calls fn for every resolved entry. Incomplete and failed entries are
// skipped.
func (c *Cache) Loop(fn func(Entry) error) error {
	if err := c.state.Check("loop"); err != nil {
		return err
	}
	ns, err := c.neighs()
	if err != nil {
		return err
	}
	for _, n := range ns {
		e, ok := fromNeigh(n)
		if !ok {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func protoIP(pa addr.Addr) ([]byte, error) {
	ip, ok := pa.IPv4()
	if !ok {
		return nil, errors.Wrapf(addr.ErrTypeMismatch, "arp protocol address %s is not ipv4", pa)
	}
	return ip[:], nil
}

// Get looks up the entry for protocol address pa. The prefix length of pa
// is ignored.
func (c *Cache) Get(pa addr.Addr) (Entry, error) {
	if err := c.state.Check("get"); err != nil {
		return Entry{}, err
	}
	if _, err := protoIP(pa); err != nil {
		return Entry{}, err
	}

	want, _ := pa.IPv4()
	var (
		found Entry
		stop  = errors.New("found")
	)
	err := c.Loop(func(e Entry) error {
		if ip, _ := e.Proto.IPv4(); ip == want {
			found = e
			return stop
		}
		return nil
	})
	switch {
	case errors.Is(err, stop):
		return found, nil
	case err != nil:
		return Entry{}, err
	}
	return Entry{}, errors.Wrapf(kernel.ErrNotFound, "arp entry for %s", pa)
}

// Add installs a permanent entry on the interface the kernel routes
// e.Proto through.
func (c *Cache) Add(e Entry) error {
	if err := c.state.Check("add"); err != nil {
		return err
	}
	ip, err := protoIP(e.Proto)
	if err != nil {
		return err
	}
	hw, ok := e.Hw.HardwareAddr()
	if !ok {
		return errors.Wrapf(addr.ErrTypeMismatch, "arp hardware address %s is not ethernet", e.Hw)
	}

	routes, err := c.nl.RouteGet(ip)
	if err != nil {
		return kernel.Wrap("route lookup", err)
	}
	if len(routes) == 0 {
		return errors.Wrapf(kernel.ErrNotFound, "no route to %s", e.Proto)
	}

	n := &netlink.Neigh{
		LinkIndex:    routes[0].LinkIndex,
		Family:       nl.FamilyV4,
		State:        nl.NeighPermanent,
		IP:           ip,
		HardwareAddr: hw,
	}
	if err := c.nl.NeighAdd(n); err != nil {
		return kernel.Wrap("add arp entry "+e.String(), err)
	}
	c.state.Log().WithField("entry", e.String()).Debug("added")
	return nil
}

// Delete removes the entry for e.Proto from every interface that has one.
// e.Hw is ignored.
func (c *Cache) Delete(e Entry) error {
	if err := c.state.Check("delete"); err != nil {
		return err
	}
	ip, err := protoIP(e.Proto)
	if err != nil {
		return err
	}

	ns, err := c.neighs()
	if err != nil {
		return err
	}
	deleted := 0
	for _, n := range ns {
		if !n.IP.Equal(ip) {
			continue
		}
		if err := c.nl.NeighDel(&n); err != nil {
			return kernel.Wrap("delete arp entry "+e.Proto.String(), err)
		}
		deleted++
	}
	if deleted == 0 {
		return errors.Wrapf(kernel.ErrNotFound, "arp entry for %s", e.Proto)
	}
	c.state.Log().WithField("entry", e.Proto.String()).Debug("deleted")
	return nil
}

// Close releases the netlink connection. Closing twice is a no-op.
func (c *Cache) Close() error {
	if !c.state.Close() {
		return nil
	}
	return c.nl.Close()
}
