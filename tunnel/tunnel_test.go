package tunnel

import (
	"dnet/addr"
	"dnet/kernel/nl"
	"dnet/kernel/nl/nltest"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func TestConfigure(t *testing.T) {
	testcases := []struct {
		desc     string
		src, dst string
		mtu      int
		wantMTU  int
		wantPeer string
		wantErr  error
	}{
		{desc: "point to point", src: "10.9.0.1", dst: "10.9.0.2", mtu: 1400, wantMTU: 1400, wantPeer: "10.9.0.2/32"},
		{desc: "no peer and default mtu", src: "10.9.0.1/24", wantMTU: 1500},
		{desc: "mixed families", src: "10.9.0.1", dst: "2001:db8::2", wantErr: addr.ErrTypeMismatch},
		{desc: "ethernet source", src: "de:ad:be:ef:ba:be", wantErr: addr.ErrNotApplicable},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			fake := nltest.New()
			fake.AddLink(nltest.Link{LinkAttrs: netlink.LinkAttrs{Name: "tun7", MTU: 1500}, LinkType: "tuntap"})

			var dst addr.Addr
			if tc.dst != "" {
				dst = addr.MustParse(tc.dst)
			}
			err := configure(fake, "tun7", addr.MustParse(tc.src), dst, tc.mtu)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			l, err := fake.LinkByName("tun7")
			require.NoError(t, err)
			assert.Equal(t, tc.wantMTU, l.Attrs().MTU)
			assert.NotZero(t, l.Attrs().Flags&net.FlagUp)

			addrs, err := fake.AddrList(l, nl.FamilyV4)
			require.NoError(t, err)
			require.Len(t, addrs, 1)
			got, err := addr.FromIPNet(addrs[0].IPNet)
			require.NoError(t, err)
			assert.Equal(t, tc.src, got.String())
			if tc.wantPeer != "" {
				require.NotNil(t, addrs[0].Peer)
				assert.Equal(t, tc.wantPeer, addrs[0].Peer.String())
			} else {
				assert.Nil(t, addrs[0].Peer)
			}
		})
	}
}

func TestConfigureMissingDevice(t *testing.T) {
	err := configure(nltest.New(), "tun9", addr.MustParse("10.9.0.1"), addr.Addr{}, 0)
	assert.Error(t, err)
}
