package cli

import (
	"dnet/addr"
	"dnet/link"
	"dnet/network/ip"
	ipv4 "dnet/network/ip/v4"
	ipv6 "dnet/network/ip/v6"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// pollInterval bounds how long tun waits in Recv before checking for
// cancellation.
const pollInterval = 500 * time.Millisecond

func (a *app) sendCommand() *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send stdin as an IPv4 packet, or as an Ethernet frame on --device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkt, err := readPayload(cmd)
			if err != nil {
				return err
			}

			var s Sender
			entry := a.log.WithField("device", device)
			if device != "" {
				s, err = a.backend.Eth(device, a.log)
			} else {
				p, perr := parseIPv4Packet(pkt)
				if perr != nil {
					return perr
				}
				entry = a.log.WithField("flow", ip.Flow(p))
				s, err = a.backend.IP(a.log)
			}
			if err != nil {
				return err
			}
			defer a.closeLogged(s, "device")

			n, err := s.Send(pkt)
			if err != nil {
				return err
			}
			entry.WithField("bytes", n).Debug("sent")
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "send an Ethernet frame on this interface")
	return cmd
}

// parseIPv4Packet rejects anything the raw IP socket could not send as is.
func parseIPv4Packet(pkt []byte) (*ipv4.Packet, error) {
	p, err := ipv4.ParsePacket(pkt)
	if err != nil {
		return nil, errors.Wrap(err, "parsing stdin")
	}
	if p.Version != ipv4.Version {
		return nil, errors.Wrapf(errUsage, "ip version %d on stdin", p.Version)
	}
	return p, nil
}

func firstLayer(name string) (gopacket.LayerType, error) {
	switch name {
	case "eth":
		return layers.LayerTypeEthernet, nil
	case "ip":
		return layers.LayerTypeIPv4, nil
	case "ip6":
		return layers.LayerTypeIPv6, nil
	}
	return 0, errors.Wrapf(errUsage, "link type %q", name)
}

func (a *app) decodeCommand() *cobra.Command {
	var linkType string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode stdin and print every layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			first, err := firstLayer(linkType)
			if err != nil {
				return err
			}
			data, err := readPayload(cmd)
			if err != nil {
				return err
			}
			p := gopacket.NewPacket(data, first, gopacket.Default)
			_, err = fmt.Fprint(cmd.OutOrStdout(), p.Dump())
			return err
		},
	}

	cmd.Flags().StringVar(&linkType, "link", "eth", "first layer of the input: eth, ip or ip6")
	return cmd
}

// summary returns a one line description of an IP packet read from a
// tunnel, like "10.0.0.1->10.0.0.2 icmp (64 bytes)".
func summary(pkt []byte) string {
	var (
		p   ip.Packet
		err error
	)
	if len(pkt) > 0 && pkt[0]>>4 == ipv6.Version {
		p, err = ipv6.ParsePacket(pkt)
	} else {
		p, err = ipv4.ParsePacket(pkt)
	}
	if err != nil {
		return fmt.Sprintf("malformed packet (%d bytes): %v", len(pkt), err)
	}
	return ip.Flow(p)
}

func (a *app) tunCommand() *cobra.Command {
	var mtu, count int

	cmd := &cobra.Command{
		Use:   "tun <src> <dst>",
		Short: "Open a tunnel device and print the packets routed into it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mtu < 68 || mtu > 65535 {
				return errors.Wrapf(errUsage, "mtu %d", mtu)
			}
			src, err := addr.Parse(args[0])
			if err != nil {
				return err
			}
			dst, err := addr.Parse(args[1])
			if err != nil {
				return err
			}

			dev, err := a.backend.Tunnel(src, dst, mtu, a.log)
			if err != nil {
				return err
			}
			defer a.closeLogged(dev, "tunnel")
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", dev.Name(), src, dst)

			ctx := cmd.Context()
			buf := make([]byte, mtu)
			for seen := 0; count == 0 || seen < count; {
				dev.SetReadDeadLine(time.Now().Add(pollInterval))
				n, err := dev.Recv(buf)
				switch {
				case errors.Is(err, link.ErrDeadLineExceeded):
					if ctx.Err() != nil {
						return nil
					}
					continue
				case err != nil:
					return err
				}
				seen++
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), summary(buf[:n])); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&mtu, "mtu", 1500, "interface MTU")
	f.IntVar(&count, "count", 0, "exit after this many packets (0: run until interrupted)")
	return cmd
}
