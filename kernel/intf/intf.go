// Package intf mirrors the kernel's network interface list.
package intf

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/nl"
	"net"
	"slices"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// iffNoARP is IFF_NOARP in the raw link flags.
const iffNoARP = 0x80

type Table struct {
	nl    nl.Client
	state kernel.State
}

var (
	_ kernel.Walker[Entry]         = (*Table)(nil)
	_ kernel.Getter[string, Entry] = (*Table)(nil)
)

// Open connects to the running kernel. Set needs CAP_NET_ADMIN.
func Open(opts ...kernel.Option) (*Table, error) {
	c, err := nl.Open()
	if err != nil {
		return nil, err
	}
	return New(c, opts...), nil
}

func New(c nl.Client, opts ...kernel.Option) *Table {
	return &Table{nl: c, state: kernel.Opened("intf", kernel.NewOptions(opts))}
}

func linkType(l netlink.Link) Type {
	a := l.Attrs()
	switch {
	case a.EncapType == "loopback" || a.Flags&net.FlagLoopback != 0:
		return TypeLoopback
	case a.EncapType == "ether":
		return TypeEth
	case l.Type() == "tuntap":
		return TypeTun
	}
	return TypeOther
}

func linkFlags(a *netlink.LinkAttrs) Flags {
	var f Flags
	for _, m := range []struct {
		net  net.Flags
		flag Flags
	}{
		{net.FlagUp, FlagUp},
		{net.FlagLoopback, FlagLoopback},
		{net.FlagPointToPoint, FlagPointToPoint},
		{net.FlagBroadcast, FlagBroadcast},
		{net.FlagMulticast, FlagMulticast},
	} {
		if a.Flags&m.net != 0 {
			f |= m.flag
		}
	}
	if a.RawFlags&iffNoARP != 0 {
		f |= FlagNoARP
	}
	return f
}

// fromLink builds an entry from a link and its addresses. The first IPv4
// address is the primary one, or the first address of any family if the
// link has no IPv4 address.
func fromLink(l netlink.Link, addrs []netlink.Addr) Entry {
	a := l.Attrs()
	e := Entry{
		Index: a.Index,
		Name:  a.Name,
		Type:  linkType(l),
		Flags: linkFlags(a),
		MTU:   a.MTU,
	}
	if hw, err := addr.FromHardwareAddr(a.HardwareAddr); err == nil {
		e.LinkAddr = hw
	}

	addrs = slices.DeleteFunc(slices.Clone(addrs), func(na netlink.Addr) bool { return na.IPNet == nil })
	primary := -1
	for i, na := range addrs {
		if na.IP.To4() != nil {
			primary = i
			break
		}
	}
	if primary < 0 && len(addrs) > 0 {
		primary = 0
	}

	for i, na := range addrs {
		ia, err := addr.FromIPNet(na.IPNet)
		if err != nil {
			continue
		}
		if i != primary {
			e.Aliases = append(e.Aliases, ia)
			continue
		}
		e.Addr = ia
		if na.Peer != nil {
			if peer, err := addr.FromIPNet(na.Peer); err == nil {
				e.DstAddr = peer
			}
		}
	}
	return e
}

func (t *Table) entry(l netlink.Link) (Entry, error) {
	addrs, err := t.nl.AddrList(l, nl.FamilyAll)
	if err != nil {
		return Entry{}, kernel.Wrap("list addresses of "+l.Attrs().Name, err)
	}
	return fromLink(l, addrs), nil
}

func (t *Table) Loop(fn func(Entry) error) error {
	if err := t.state.Check("loop"); err != nil {
		return err
	}
	links, err := t.nl.LinkList()
	if err != nil {
		return kernel.Wrap("list links", err)
	}
	addrs, err := t.nl.AddrList(nil, nl.FamilyAll)
	if err != nil {
		return kernel.Wrap("list addresses", err)
	}

	byLink := make(map[int][]netlink.Addr)
	for _, a := range addrs {
		byLink[a.LinkIndex] = append(byLink[a.LinkIndex], a)
	}
	for _, l := range links {
		if err := fn(fromLink(l, byLink[l.Attrs().Index])); err != nil {
			return err
		}
	}
	return nil
}

// Get looks an interface up by name.
func (t *Table) Get(name string) (Entry, error) {
	if err := t.state.Check("get"); err != nil {
		return Entry{}, err
	}
	l, err := t.nl.LinkByName(name)
	if err != nil {
		return Entry{}, kernel.Wrap("find interface "+name, err)
	}
	return t.entry(l)
}

// GetSrc returns the interface that owns address a.
func (t *Table) GetSrc(a addr.Addr) (Entry, error) {
	if err := t.state.Check("get"); err != nil {
		return Entry{}, err
	}
	var (
		found Entry
		stop  = errors.New("found")
	)
	err := t.Loop(func(e Entry) error {
		if e.Has(a) {
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
	return Entry{}, errors.Wrapf(kernel.ErrNotFound, "interface with address %s", a)
}

// GetDst returns the interface the kernel would send traffic for a through.
func (t *Table) GetDst(a addr.Addr) (Entry, error) {
	if err := t.state.Check("get"); err != nil {
		return Entry{}, err
	}
	ip, ok := a.IP()
	if !ok {
		return Entry{}, errors.Wrapf(addr.ErrTypeMismatch, "destination %s is not an ip address", a)
	}

	routes, err := t.nl.RouteGet(ip)
	if err != nil {
		return Entry{}, kernel.Wrap("route lookup "+a.String(), err)
	}
	if len(routes) == 0 {
		return Entry{}, errors.Wrapf(kernel.ErrNotFound, "route to %s", a)
	}
	l, err := t.nl.LinkByIndex(routes[0].LinkIndex)
	if err != nil {
		return Entry{}, kernel.Wrap("find interface for "+a.String(), err)
	}
	return t.entry(l)
}

// Set applies the MTU, link address, addresses and up flag of e to the
// interface named e.Name. A zero MTU, link address or address leaves that
// setting alone. Addresses are only ever added.
func (t *Table) Set(e Entry) error {
	if err := t.state.Check("set"); err != nil {
		return err
	}
	l, err := t.nl.LinkByName(e.Name)
	if err != nil {
		return kernel.Wrap("find interface "+e.Name, err)
	}
	cur, err := t.entry(l)
	if err != nil {
		return err
	}
	log := t.state.Log().WithField("intf", e.Name)

	if e.MTU != 0 && e.MTU != cur.MTU {
		if err := t.nl.LinkSetMTU(l, e.MTU); err != nil {
			return kernel.Wrap("set mtu of "+e.Name, err)
		}
		log.WithField("mtu", e.MTU).Debug("set")
	}

	if hw, ok := e.LinkAddr.HardwareAddr(); ok && e.LinkAddr != cur.LinkAddr {
		if err := t.nl.LinkSetHardwareAddr(l, hw); err != nil {
			return kernel.Wrap("set link address of "+e.Name, err)
		}
		log.WithField("link_addr", e.LinkAddr.String()).Debug("set")
	}

	for i, a := range append([]addr.Addr{e.Addr}, e.Aliases...) {
		if a.IsZero() || cur.Has(a) {
			continue
		}
		n, err := a.IPNet()
		if err != nil {
			return errors.Wrapf(err, "address %s", a)
		}
		na := &netlink.Addr{IPNet: n}
		if i == 0 && !e.DstAddr.IsZero() {
			if na.Peer, err = e.DstAddr.IPNet(); err != nil {
				return errors.Wrapf(err, "destination address %s", e.DstAddr)
			}
		}
		if err := t.nl.AddrAdd(l, na); err != nil {
			return kernel.Wrap("add address "+a.String()+" to "+e.Name, err)
		}
		log.WithField("addr", a.String()).Debug("added")
	}

	if up := e.Flags&FlagUp != 0; up != (cur.Flags&FlagUp != 0) {
		op, set := "up", t.nl.LinkSetUp
		if !up {
			op, set = "down", t.nl.LinkSetDown
		}
		if err := set(l); err != nil {
			return kernel.Wrap("set "+e.Name+" "+op, err)
		}
		log.Debug(op)
	}
	return nil
}

func (t *Table) Close() error {
	if !t.state.Close() {
		return nil
	}
	return t.nl.Close()
}
