// Package route mirrors the kernel's main IPv4 and IPv6 routing table.
package route

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/nl"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

type Entry struct {
	Dst       addr.Addr `yaml:"dst"`
	Gw        addr.Addr `yaml:"gw"`
	Interface string    `yaml:"interface,omitempty"`
	Metric    int       `yaml:"metric"`
}

func (e Entry) String() string {
	s := e.Dst.String() + " via " + e.Gw.String()
	if e.Interface != "" {
		s += " dev " + e.Interface
	}
	return s
}

type Table struct {
	nl    nl.Client
	state kernel.State
}

var _ kernel.Table[addr.Addr, Entry] = (*Table)(nil)

// Open connects to the running kernel. Add and Delete need CAP_NET_ADMIN.
func Open(opts ...kernel.Option) (*Table, error) {
	c, err := nl.Open()
	if err != nil {
		return nil, err
	}
	return New(c, opts...), nil
}

func New(c nl.Client, opts ...kernel.Option) *Table {
	return &Table{nl: c, state: kernel.Opened("route", kernel.NewOptions(opts))}
}

// anyAddr returns the all-zero address of family, with a full prefix when
// host is set and an empty one otherwise.
func anyAddr(family int, host bool) addr.Addr {
	typ := addr.TypeIP
	if family == nl.FamilyV6 {
		typ = addr.TypeIP6
	}
	bits := 0
	if host {
		bits = typ.Width()
	}
	a, _ := addr.New(typ, make([]byte, typ.Size()), bits)
	return a
}

func (t *Table) linkNames() (map[int]string, error) {
	links, err := t.nl.LinkList()
	if err != nil {
		return nil, kernel.Wrap("list links", err)
	}
	names := make(map[int]string, len(links))
	for _, l := range links {
		names[l.Attrs().Index] = l.Attrs().Name
	}
	return names, nil
}

func fromRoute(r netlink.Route, family int, names map[int]string) (Entry, error) {
	e := Entry{
		Dst:       anyAddr(family, false),
		Gw:        anyAddr(family, true),
		Interface: names[r.LinkIndex],
		Metric:    r.Priority,
	}
	if r.Dst != nil {
		dst, err := addr.FromIPNet(r.Dst)
		if err != nil {
			return Entry{}, err
		}
		e.Dst = dst
	}
	if r.Gw != nil {
		gw, err := addr.FromIP(r.Gw)
		if err != nil {
			return Entry{}, err
		}
		e.Gw = gw
	}
	return e, nil
}

// Loop calls fn for every route of the main table, IPv4 first.
func (t *Table) Loop(fn func(Entry) error) error {
	if err := t.state.Check("loop"); err != nil {
		return err
	}
	names, err := t.linkNames()
	if err != nil {
		return err
	}

	for _, family := range []int{nl.FamilyV4, nl.FamilyV6} {
		routes, err := t.nl.RouteList(nil, family)
		if err != nil {
			return kernel.Wrap("list routes", err)
		}
		for _, r := range routes {
			e, err := fromRoute(r, family, names)
			if err != nil {
				return errors.Wrapf(err, "converting route %s", r)
			}
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the route the kernel would use to reach dst. Dst of the
// result is dst itself.
func (t *Table) Get(dst addr.Addr) (Entry, error) {
	if err := t.state.Check("get"); err != nil {
		return Entry{}, err
	}
	ip, ok := dst.IP()
	if !ok {
		return Entry{}, errors.Wrapf(addr.ErrTypeMismatch, "route destination %s is not an ip address", dst)
	}

	routes, err := t.nl.RouteGet(ip)
	if err != nil {
		return Entry{}, kernel.Wrap("route lookup "+dst.String(), err)
	}
	if len(routes) == 0 {
		return Entry{}, errors.Wrapf(kernel.ErrNotFound, "route to %s", dst)
	}
	names, err := t.linkNames()
	if err != nil {
		return Entry{}, err
	}
	e, err := fromRoute(routes[0], nl.Family(ip), names)
	if err != nil {
		return Entry{}, err
	}
	e.Dst = dst
	return e, nil
}

func (t *Table) toRoute(e Entry) (*netlink.Route, error) {
	network, err := e.Dst.Network()
	if err != nil {
		return nil, errors.Wrap(err, "route destination")
	}
	dst, err := network.IPNet()
	if err != nil {
		return nil, errors.Wrap(err, "route destination")
	}
	r := &netlink.Route{Dst: dst, Priority: e.Metric}
	if gw, ok := e.Gw.IP(); ok && !gw.IsUnspecified() {
		if e.Gw.Type() != e.Dst.Type() {
			return nil, errors.Wrapf(addr.ErrTypeMismatch, "gateway %s for %s", e.Gw, e.Dst)
		}
		r.Gw = gw
	}
	if e.Interface != "" {
		l, err := t.nl.LinkByName(e.Interface)
		if err != nil {
			return nil, kernel.Wrap("find interface "+e.Interface, err)
		}
		r.LinkIndex = l.Attrs().Index
	}
	return r, nil
}

func (t *Table) Add(e Entry) error {
	if err := t.state.Check("add"); err != nil {
		return err
	}
	r, err := t.toRoute(e)
	if err != nil {
		return err
	}
	if err := t.nl.RouteAdd(r); err != nil {
		return kernel.Wrap("add route "+e.String(), err)
	}
	t.state.Log().WithField("entry", e.String()).Debug("added")
	return nil
}

// Delete removes the route to e.Dst. A gateway in e narrows the match.
func (t *Table) Delete(e Entry) error {
	if err := t.state.Check("delete"); err != nil {
		return err
	}
	r, err := t.toRoute(Entry{Dst: e.Dst, Gw: e.Gw})
	if err != nil {
		return err
	}
	if err := t.nl.RouteDel(r); err != nil {
		return kernel.Wrap("delete route "+e.Dst.String(), err)
	}
	t.state.Log().WithField("entry", e.Dst.String()).Debug("deleted")
	return nil
}

func (t *Table) Close() error {
	if !t.state.Close() {
		return nil
	}
	return t.nl.Close()
}
