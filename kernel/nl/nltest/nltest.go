// Package nltest provides an in-memory nl.Client for tests.
package nltest

import (
	"dnet/kernel/nl"
	"net"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Link is a netlink.Link held by value, so the fake can hand out copies.
type Link struct {
	netlink.LinkAttrs
	LinkType string
}

func (l *Link) Attrs() *netlink.LinkAttrs { return &l.LinkAttrs }
func (l *Link) Type() string              { return l.LinkType }

// Client keeps links, addresses, neighbours and routes in memory and fails
// the way the kernel does: EEXIST on duplicates, ENOENT or ESRCH on misses.
type Client struct {
	mu     sync.Mutex
	links  []Link
	addrs  []netlink.Addr
	neighs []netlink.Neigh
	routes []netlink.Route
	errs   map[string]error
	closed bool
}

var _ nl.Client = (*Client)(nil)

func New() *Client {
	return &Client{errs: make(map[string]error)}
}

// AddLink registers l. A zero index is replaced with the next free one.
func (c *Client) AddLink(l Link) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l.Index == 0 {
		l.Index = len(c.links) + 1
	}
	c.links = append(c.links, l)
	return l.Index
}

// Fail makes every later call to method return err. A nil err clears it.
func (c *Client) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		delete(c.errs, method)
		return
	}
	c.errs[method] = err
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) Neighs() []netlink.Neigh {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.neighs)
}

func (c *Client) Routes() []netlink.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.routes)
}

func (c *Client) check(method string) error {
	if c.closed {
		return errors.Errorf("%s on closed client", method)
	}
	return c.errs[method]
}

func (c *Client) link(index int) (*Link, error) {
	for i := range c.links {
		if c.links[i].Index == index {
			return &c.links[i], nil
		}
	}
	return nil, errors.Wrapf(unix.ENODEV, "link %d", index)
}

func (c *Client) LinkList() ([]netlink.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("LinkList"); err != nil {
		return nil, err
	}

	out := make([]netlink.Link, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, &l)
	}
	return out, nil
}

func (c *Client) LinkByName(name string) (netlink.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("LinkByName"); err != nil {
		return nil, err
	}

	for _, l := range c.links {
		if l.Name == name {
			return &l, nil
		}
	}
	return nil, errors.Wrapf(unix.ENODEV, "link %s", name)
}

func (c *Client) LinkByIndex(index int) (netlink.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("LinkByIndex"); err != nil {
		return nil, err
	}

	l, err := c.link(index)
	if err != nil {
		return nil, err
	}
	cp := *l
	return &cp, nil
}

func (c *Client) modifyLink(method string, link netlink.Link, fn func(*Link)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(method); err != nil {
		return err
	}

	l, err := c.link(link.Attrs().Index)
	if err != nil {
		return err
	}
	fn(l)
	return nil
}

func (c *Client) LinkSetUp(link netlink.Link) error {
	return c.modifyLink("LinkSetUp", link, func(l *Link) { l.Flags |= net.FlagUp })
}

func (c *Client) LinkSetDown(link netlink.Link) error {
	return c.modifyLink("LinkSetDown", link, func(l *Link) { l.Flags &^= net.FlagUp })
}

func (c *Client) LinkSetMTU(link netlink.Link, mtu int) error {
	return c.modifyLink("LinkSetMTU", link, func(l *Link) { l.MTU = mtu })
}

func (c *Client) LinkSetHardwareAddr(link netlink.Link, hw net.HardwareAddr) error {
	return c.modifyLink("LinkSetHardwareAddr", link, func(l *Link) { l.HardwareAddr = slices.Clone(hw) })
}

func (c *Client) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("AddrList"); err != nil {
		return nil, err
	}

	var out []netlink.Addr
	for _, a := range c.addrs {
		if link != nil && a.LinkIndex != link.Attrs().Index {
			continue
		}
		if family != nl.FamilyAll && nl.Family(a.IP) != family {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Client) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("AddrAdd"); err != nil {
		return err
	}

	index := link.Attrs().Index
	if _, err := c.link(index); err != nil {
		return err
	}
	for _, a := range c.addrs {
		if a.LinkIndex == index && a.IP.Equal(addr.IP) {
			return errors.Wrapf(unix.EEXIST, "address %s", addr.IP)
		}
	}
	a := *addr
	a.LinkIndex = index
	c.addrs = append(c.addrs, a)
	return nil
}

func (c *Client) NeighList(linkIndex, family int) ([]netlink.Neigh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("NeighList"); err != nil {
		return nil, err
	}

	var out []netlink.Neigh
	for _, n := range c.neighs {
		if linkIndex != 0 && n.LinkIndex != linkIndex {
			continue
		}
		if family != nl.FamilyAll && n.Family != family {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Client) findNeigh(n *netlink.Neigh) int {
	return slices.IndexFunc(c.neighs, func(m netlink.Neigh) bool {
		return m.LinkIndex == n.LinkIndex && m.IP.Equal(n.IP)
	})
}

func (c *Client) NeighAdd(n *netlink.Neigh) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("NeighAdd"); err != nil {
		return err
	}

	if _, err := c.link(n.LinkIndex); err != nil {
		return err
	}
	if c.findNeigh(n) >= 0 {
		return errors.Wrapf(unix.EEXIST, "neighbour %s", n.IP)
	}
	c.neighs = append(c.neighs, *n)
	return nil
}

func (c *Client) NeighDel(n *netlink.Neigh) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("NeighDel"); err != nil {
		return err
	}

	i := c.findNeigh(n)
	if i < 0 {
		return errors.Wrapf(unix.ENOENT, "neighbour %s", n.IP)
	}
	c.neighs = slices.Delete(c.neighs, i, i+1)
	return nil
}

func routeFamily(r netlink.Route) int {
	switch {
	case r.Dst != nil:
		return nl.Family(r.Dst.IP)
	case r.Gw != nil:
		return nl.Family(r.Gw)
	}
	return nl.FamilyV4
}

func sameDst(a, b *net.IPNet) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

func (c *Client) RouteList(link netlink.Link, family int) ([]netlink.Route, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("RouteList"); err != nil {
		return nil, err
	}

	var out []netlink.Route
	for _, r := range c.routes {
		if link != nil && r.LinkIndex != link.Attrs().Index {
			continue
		}
		if family != nl.FamilyAll && routeFamily(r) != family {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RouteGet picks the longest matching prefix, like the kernel's lookup.
func (c *Client) RouteGet(dst net.IP) ([]netlink.Route, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("RouteGet"); err != nil {
		return nil, err
	}

	best, bestLen := -1, -1
	for i, r := range c.routes {
		if routeFamily(r) != nl.Family(dst) {
			continue
		}
		n := 0
		if r.Dst != nil {
			if !r.Dst.Contains(dst) {
				continue
			}
			n, _ = r.Dst.Mask.Size()
		}
		if n > bestLen {
			best, bestLen = i, n
		}
	}
	if best < 0 {
		return nil, errors.Wrapf(unix.ENETUNREACH, "route to %s", dst)
	}

	r := c.routes[best]
	bits := 8 * len(dst)
	if dst.To4() != nil {
		dst, bits = dst.To4(), 32
	}
	r.Dst = &net.IPNet{IP: dst, Mask: net.CIDRMask(bits, bits)}
	return []netlink.Route{r}, nil
}

func (c *Client) findRoute(route *netlink.Route) int {
	return slices.IndexFunc(c.routes, func(r netlink.Route) bool {
		if !sameDst(r.Dst, route.Dst) {
			return false
		}
		return route.Gw == nil || r.Gw.Equal(route.Gw)
	})
}

func (c *Client) RouteAdd(route *netlink.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("RouteAdd"); err != nil {
		return err
	}

	if route.LinkIndex == 0 && route.Gw == nil {
		return errors.Wrap(unix.EINVAL, "route needs a gateway or a link")
	}
	if c.findRoute(&netlink.Route{Dst: route.Dst}) >= 0 {
		return errors.Wrapf(unix.EEXIST, "route %s", route.Dst)
	}
	c.routes = append(c.routes, *route)
	return nil
}

func (c *Client) RouteDel(route *netlink.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("RouteDel"); err != nil {
		return err
	}

	i := c.findRoute(route)
	if i < 0 {
		return errors.Wrapf(unix.ESRCH, "route %s", route.Dst)
	}
	c.routes = slices.Delete(c.routes, i, i+1)
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
