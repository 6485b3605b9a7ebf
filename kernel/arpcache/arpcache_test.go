package arpcache

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/nl"
	"dnet/kernel/nl/nltest"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

func newCache(t *testing.T) (*Cache, *nltest.Client) {
	t.Helper()

	fake := nltest.New()
	idx := fake.AddLink(nltest.Link{LinkAttrs: netlink.LinkAttrs{Name: "eth0", MTU: 1500}, LinkType: "device"})
	_, lan, _ := net.ParseCIDR("10.0.0.0/24")
	require.NoError(t, fake.RouteAdd(&netlink.Route{LinkIndex: idx, Dst: lan}))

	c := New(fake)
	t.Cleanup(func() { c.Close() })
	return c, fake
}

func entry(proto, hw string) Entry {
	return Entry{Proto: addr.MustParse(proto), Hw: addr.MustParse(hw)}
}

func TestEmpty(t *testing.T) {
	c, _ := newCache(t)

	entries, err := kernel.Entries[Entry](c)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = c.Get(addr.MustParse("10.0.0.1"))
	assert.ErrorIs(t, err, kernel.ErrNotFound)
}

func TestAddGetDelete(t *testing.T) {
	c, fake := newCache(t)
	e := entry("10.0.0.1", "de:ad:be:ef:ba:be")

	require.NoError(t, c.Add(e))
	require.Len(t, fake.Neighs(), 1)
	n := fake.Neighs()[0]
	assert.Equal(t, nl.NeighPermanent, n.State)
	assert.Equal(t, 1, n.LinkIndex)

	got, err := c.Get(addr.MustParse("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.Equal(t, "10.0.0.1 at de:ad:be:ef:ba:be", got.String())

	assert.ErrorIs(t, c.Add(e), kernel.ErrExist)

	require.NoError(t, c.Delete(Entry{Proto: e.Proto}))
	assert.Empty(t, fake.Neighs())
	assert.ErrorIs(t, c.Delete(e), kernel.ErrNotFound)
}

func TestAddErrors(t *testing.T) {
	testcases := []struct {
		desc  string
		entry Entry
		setup func(*nltest.Client)
		want  error
	}{
		{
			desc:  "ipv6 protocol address",
			entry: entry("2001:db8::1", "de:ad:be:ef:ba:be"),
			want:  addr.ErrTypeMismatch,
		},
		{
			desc:  "non ethernet hardware address",
			entry: Entry{Proto: addr.MustParse("10.0.0.1"), Hw: addr.MustParse("10.0.0.2")},
			want:  addr.ErrTypeMismatch,
		},
		{
			desc:  "no route",
			entry: entry("192.0.2.1", "de:ad:be:ef:ba:be"),
			want:  kernel.ErrNotFound,
		},
		{
			desc:  "permission denied",
			entry: entry("10.0.0.1", "de:ad:be:ef:ba:be"),
			setup: func(f *nltest.Client) { f.Fail("NeighAdd", unix.EPERM) },
			want:  kernel.ErrPermission,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			c, fake := newCache(t)
			if tc.setup != nil {
				tc.setup(fake)
			}
			err := c.Add(tc.entry)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, fake.Neighs())
		})
	}
}

func TestLoopSkipsUnresolved(t *testing.T) {
	c, fake := newCache(t)
	require.NoError(t, fake.NeighAdd(&netlink.Neigh{LinkIndex: 1, Family: nl.FamilyV4, State: nl.NeighIncomplete, IP: net.ParseIP("10.0.0.7")}))
	require.NoError(t, c.Add(entry("10.0.0.8", "00:11:22:33:44:55")))

	entries, err := kernel.Entries[Entry](c)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.8", entries[0].Proto.String())
}

func TestLoopError(t *testing.T) {
	c, fake := newCache(t)
	fake.Fail("NeighList", unix.EIO)

	err := c.Loop(func(Entry) error { return nil })
	assert.ErrorIs(t, err, unix.EIO)

	fake.Fail("NeighList", nil)
	assert.NoError(t, c.Loop(func(Entry) error { return nil }), "handle stays usable after a failed walk")
}

func TestClosed(t *testing.T) {
	c, fake := newCache(t)
	require.NoError(t, c.Close())
	assert.True(t, fake.Closed())
	assert.NoError(t, c.Close())

	e := entry("10.0.0.1", "de:ad:be:ef:ba:be")
	assert.ErrorIs(t, c.Loop(func(Entry) error { return nil }), kernel.ErrNotOpen)
	_, err := c.Get(e.Proto)
	assert.ErrorIs(t, err, kernel.ErrNotOpen)
	assert.ErrorIs(t, c.Add(e), kernel.ErrNotOpen)
	assert.ErrorIs(t, c.Delete(e), kernel.ErrNotOpen)
}
