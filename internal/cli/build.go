package cli

import (
	"dnet/addr"
	sliceutil "dnet/lib/slice"
	"dnet/link/arp"
	"dnet/link/eth"
	"dnet/network/icmp"
	"dnet/network/ip"
	ipv4 "dnet/network/ip/v4"
	"dnet/rand"
	"dnet/transport/tcp"
	"dnet/transport/udp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("invalid argument")

func parseEth(s string) (eth.Addr, error) {
	a, err := addr.ParseLiteral(s)
	if err != nil {
		return eth.Addr{}, err
	}
	e, ok := a.Eth()
	if !ok {
		return eth.Addr{}, errors.Wrapf(addr.ErrTypeMismatch, "%s is not an ethernet address", s)
	}
	return e, nil
}

func parseIPv4(s string) (ipv4.Addr, error) {
	a, err := addr.Parse(s)
	if err != nil {
		return ipv4.Addr{}, err
	}
	v4, ok := a.IPv4()
	if !ok {
		return ipv4.Addr{}, errors.Wrapf(addr.ErrTypeMismatch, "%s is not an ipv4 address", s)
	}
	return v4, nil
}

// localEth returns the hardware address of the configured interface, or
// the zero address when there is none.
func (a *app) localEth() (eth.Addr, error) {
	if a.cfg.Interface == "" {
		return eth.Addr{}, nil
	}
	t, err := a.backend.Intf(a.tableOpts()...)
	if err != nil {
		return eth.Addr{}, err
	}
	defer a.closeLogged(t, "interface table")

	e, err := t.Get(a.cfg.Interface)
	if err != nil {
		return eth.Addr{}, err
	}
	hw, _ := e.LinkAddr.Eth()
	return hw, nil
}

// localIPv4 returns the primary IPv4 address of the configured interface,
// or 0.0.0.0, which the kernel replaces on raw sends.
func (a *app) localIPv4() (ipv4.Addr, error) {
	if a.cfg.Interface == "" {
		return ipv4.Addr{}, nil
	}
	t, err := a.backend.Intf(a.tableOpts()...)
	if err != nil {
		return ipv4.Addr{}, err
	}
	defer a.closeLogged(t, "interface table")

	e, err := t.Get(a.cfg.Interface)
	if err != nil {
		return ipv4.Addr{}, err
	}
	v4, _ := e.Addr.IPv4()
	return v4, nil
}

func randUint32() (uint32, error) {
	r, err := rand.Open()
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return r.Uint32()
}

func (a *app) addrCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "addr <address>...",
		Short: "Print addresses and hostnames in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := sliceutil.TryMap(args, func(s string) (addr.Addr, error) {
				return addr.DefaultParser.Parse(cmd.Context(), s)
			})
			if err != nil {
				return err
			}
			return render(a, cmd.OutOrStdout(), out, stringer)
		},
	}
}

// unescape decodes C style escapes: \xNN, \\, \n, \r, \t and \0.
func unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i++; i == len(s) {
			return nil, errors.Wrapf(errUsage, "trailing backslash in %q", s)
		}
		switch s[i] {
		case 'x':
			if i+2 >= len(s) {
				return nil, errors.Wrapf(errUsage, "short \\x escape in %q", s)
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, errors.Wrapf(errUsage, "bad \\x escape in %q", s)
			}
			out = append(out, byte(v))
			i += 2
		case '\\':
			out = append(out, '\\')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		default:
			return nil, errors.Wrapf(errUsage, "unknown escape \\%c in %q", s[i], s)
		}
	}
	return out, nil
}

func (a *app) hexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hex <string>...",
		Short: "Write escaped strings to stdout as binary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []byte
			for _, s := range args {
				b, err := unescape(s)
				if err != nil {
					return err
				}
				out = append(out, b...)
			}
			return writeBytes(cmd, out)
		},
	}
}

func (a *app) randCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rand [n]",
		Short: "Write n random bytes to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 16
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 0 || v > maxPayload {
					return errors.Wrapf(errUsage, "byte count %q", args[0])
				}
				n = v
			}

			r, err := rand.Open()
			if err != nil {
				return err
			}
			defer r.Close()

			buf := make([]byte, n)
			if err := r.Get(buf); err != nil {
				return err
			}
			return writeBytes(cmd, buf)
		},
	}
}

func (a *app) ethCommand() *cobra.Command {
	var typ, src, dst string

	cmd := &cobra.Command{
		Use:   "eth",
		Short: "Prepend an Ethernet header to stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, ok := eth.Types.Parse(typ)
			if !ok {
				return errors.Wrapf(errUsage, "ethernet type %q", typ)
			}
			h := eth.Header{Type: t}

			var err error
			if src == "" {
				h.Src, err = a.localEth()
			} else {
				h.Src, err = parseEth(src)
			}
			if err != nil {
				return err
			}
			if h.Dst, err = parseEth(dst); err != nil {
				return err
			}

			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}
			return writeBytes(cmd, eth.Frame(h, payload))
		},
	}

	f := cmd.Flags()
	f.StringVar(&typ, "type", "ip", "ethernet type, by name or number")
	f.StringVar(&src, "src", "", "source address (default: the configured interface)")
	f.StringVar(&dst, "dst", eth.AddrBroadcast.String(), "destination address")
	return cmd
}

func (a *app) arpBuildCommand() *cobra.Command {
	var op, sha, spa, tha, tpa string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write an Ethernet/IPv4 ARP message to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, ok := arp.Ops.Parse(op)
			if !ok {
				return errors.Wrapf(errUsage, "arp op %q", op)
			}

			var (
				srcHw, dstHw eth.Addr
				srcIP, dstIP ipv4.Addr
				err          error
			)
			if sha == "" {
				srcHw, err = a.localEth()
			} else {
				srcHw, err = parseEth(sha)
			}
			if err != nil {
				return err
			}
			if spa == "" {
				srcIP, err = a.localIPv4()
			} else {
				srcIP, err = parseIPv4(spa)
			}
			if err != nil {
				return err
			}
			if tha != "" {
				if dstHw, err = parseEth(tha); err != nil {
					return err
				}
			}
			if dstIP, err = parseIPv4(tpa); err != nil {
				return err
			}
			return writeBytes(cmd, arp.PackEthIP(o, srcHw, srcIP, dstHw, dstIP))
		},
	}

	f := cmd.Flags()
	f.StringVar(&op, "op", "request", "operation, by name or number")
	f.StringVar(&sha, "sha", "", "sender hardware address (default: the configured interface)")
	f.StringVar(&spa, "spa", "", "sender protocol address (default: the configured interface)")
	f.StringVar(&tha, "tha", "", "target hardware address")
	f.StringVar(&tpa, "tpa", "", "target protocol address")
	_ = cmd.MarkFlagRequired("tpa")
	return cmd
}

func (a *app) ipCommand() *cobra.Command {
	var (
		proto, src, dst string
		tos, ttl        uint8
		id, frag        uint16
		df, mf          bool
	)

	cmd := &cobra.Command{
		Use:   "ip",
		Short: "Prepend an IPv4 header to stdin and fill in checksums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := ip.Protocols.Parse(proto)
			if !ok {
				return errors.Wrapf(errUsage, "protocol %q", proto)
			}
			if frag > ipv4.OffMask {
				return errors.Wrapf(errUsage, "fragment offset %d", frag)
			}

			var (
				s, d ipv4.Addr
				err  error
			)
			if src == "" {
				s, err = a.localIPv4()
			} else {
				s, err = parseIPv4(src)
			}
			if err != nil {
				return err
			}
			if d, err = parseIPv4(dst); err != nil {
				return err
			}

			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}
			if ipv4.HeaderLen+len(payload) > ipv4.MaxLen {
				return errors.Wrapf(errUsage, "payload of %d bytes does not fit", len(payload))
			}

			h := ipv4.NewHeader(p, s, d, len(payload))
			h.TOS, h.TTL, h.Off = tos, ttl, frag
			if df {
				h.Off |= ipv4.FlagDF
			}
			if mf {
				h.Off |= ipv4.FlagMF
			}
			if cmd.Flags().Changed("id") {
				h.ID = id
			} else {
				r, err := randUint32()
				if err != nil {
					return err
				}
				h.ID = uint16(r)
			}

			pkt := append(h.AppendTo(make([]byte, 0, h.Len()+len(payload))), payload...)
			if err := ipv4.SetChecksums(pkt); err != nil {
				return err
			}
			return writeBytes(cmd, pkt)
		},
	}

	f := cmd.Flags()
	f.StringVar(&proto, "proto", "", "protocol, by name or number")
	f.StringVar(&src, "src", "", "source address (default: the configured interface)")
	f.StringVar(&dst, "dst", "", "destination address")
	f.Uint8Var(&tos, "tos", 0, "type of service")
	f.Uint8Var(&ttl, "ttl", ipv4.DefaultTTL, "time to live")
	f.Uint16Var(&id, "id", 0, "identification (default: random)")
	f.Uint16Var(&frag, "frag", 0, "fragment offset in 8-byte units")
	f.BoolVar(&df, "df", false, "set the don't fragment flag")
	f.BoolVar(&mf, "mf", false, "set the more fragments flag")
	_ = cmd.MarkFlagRequired("proto")
	_ = cmd.MarkFlagRequired("dst")
	return cmd
}

// rawMessage is an ICMP body taken verbatim.
type rawMessage []byte

func (m rawMessage) Len() int                 { return len(m) }
func (m rawMessage) AppendTo(b []byte) []byte { return append(b, m...) }

func (a *app) icmpCommand() *cobra.Command {
	var (
		typ     string
		code    uint8
		id, seq uint16
	)

	cmd := &cobra.Command{
		Use:   "icmp",
		Short: "Wrap stdin in an ICMP message",
		Long: "Wrap stdin in an ICMP message. Echo and echo reply messages get an\n" +
			"identifier and sequence number; other types take stdin as the whole body.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, ok := icmp.Types.Parse(typ)
			if !ok {
				return errors.Wrapf(errUsage, "icmp type %q", typ)
			}
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}

			var msg icmp.Message = rawMessage(payload)
			if t == icmp.TypeEcho || t == icmp.TypeEchoReply {
				msg = &icmp.Echo{ID: id, Seq: seq, Data: payload}
			}
			return writeBytes(cmd, icmp.Marshal(t, icmp.Code(code), msg))
		},
	}

	f := cmd.Flags()
	f.StringVar(&typ, "type", "echo", "message type, by name or number")
	f.Uint8Var(&code, "code", 0, "message code")
	f.Uint16Var(&id, "id", 0, "echo identifier")
	f.Uint16Var(&seq, "seq", 0, "echo sequence number")
	return cmd
}

// sourcePort returns port, or a random unprivileged one when it is unset.
func sourcePort(cmd *cobra.Command, port uint16) (uint16, error) {
	if cmd.Flags().Changed("sport") {
		return port, nil
	}
	r, err := randUint32()
	if err != nil {
		return 0, err
	}
	return uint16(1024 + r%(65536-1024)), nil
}

func (a *app) tcpCommand() *cobra.Command {
	var (
		sport, dport, win uint16
		seq, ack          uint32
		flags             string
	)

	cmd := &cobra.Command{
		Use:   "tcp",
		Short: "Prepend a TCP header to stdin",
		Long:  "Prepend a TCP header to stdin. The checksum is filled in by the ip command.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fl, ok := tcp.ParseFlags(flags)
			if !ok {
				return errors.Wrapf(errUsage, "tcp flags %q", flags)
			}
			sp, err := sourcePort(cmd, sport)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seq") {
				if seq, err = randUint32(); err != nil {
					return err
				}
			}
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}

			h := tcp.NewHeader(sp, dport, seq, ack, fl, win)
			return writeBytes(cmd, append(h.Encode(), payload...))
		},
	}

	f := cmd.Flags()
	f.Uint16Var(&sport, "sport", 0, "source port (default: random)")
	f.Uint16Var(&dport, "dport", 0, "destination port")
	f.Uint32Var(&seq, "seq", 0, "sequence number (default: random)")
	f.Uint32Var(&ack, "ack", 0, "acknowledgment number")
	f.StringVar(&flags, "flags", "syn", "flags, separated by '|' or ','")
	f.Uint16Var(&win, "win", 65535, "window size")
	_ = cmd.MarkFlagRequired("dport")
	return cmd
}

func (a *app) udpCommand() *cobra.Command {
	var sport, dport uint16

	cmd := &cobra.Command{
		Use:   "udp",
		Short: "Prepend a UDP header to stdin",
		Long:  "Prepend a UDP header to stdin. The checksum is filled in by the ip command.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sp, err := sourcePort(cmd, sport)
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}
			if udp.HeaderLen+len(payload) > 0xffff {
				return errors.Wrapf(errUsage, "payload of %d bytes does not fit", len(payload))
			}

			h := udp.NewHeader(sp, dport, len(payload))
			return writeBytes(cmd, append(h.Encode(), payload...))
		},
	}

	f := cmd.Flags()
	f.Uint16Var(&sport, "sport", 0, "source port (default: random)")
	f.Uint16Var(&dport, "dport", 0, "destination port")
	_ = cmd.MarkFlagRequired("dport")
	return cmd
}
