package cli

import (
	"dnet/addr"
	"dnet/kernel"
	"dnet/kernel/arpcache"
	"dnet/kernel/firewall"
	"dnet/kernel/intf"
	"dnet/kernel/route"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// show writes every entry of w.
func show[E any](a *app, cmd *cobra.Command, w kernel.Walker[E], text func(E) string) error {
	entries, err := kernel.Entries(w)
	if err != nil {
		return err
	}
	return render(a, cmd.OutOrStdout(), entries, text)
}

func (a *app) done(cmd *cobra.Command, what, verb string) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", what, verb)
	return err
}

func (a *app) arpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arp",
		Short: "Build ARP messages and manage the ARP cache",
	}

	withCache := func(fn func(cmd *cobra.Command, c *arpcache.Cache, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := a.backend.ARP(a.tableOpts()...)
			if err != nil {
				return err
			}
			defer a.closeLogged(c, "arp cache")
			return fn(cmd, c, args)
		}
	}

	cmd.AddCommand(
		a.arpBuildCommand(),
		&cobra.Command{
			Use:   "show",
			Short: "List the ARP cache",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, c *arpcache.Cache, _ []string) error {
				return show[arpcache.Entry](a, cmd, c, stringer)
			}),
		},
		&cobra.Command{
			Use:   "get <host>",
			Short: "Show the ARP entry of host",
			Args:  cobra.ExactArgs(1),
			RunE: withCache(func(cmd *cobra.Command, c *arpcache.Cache, args []string) error {
				pa, err := addr.Parse(args[0])
				if err != nil {
					return err
				}
				e, err := c.Get(pa)
				if err != nil {
					return err
				}
				return render(a, cmd.OutOrStdout(), []arpcache.Entry{e}, stringer)
			}),
		},
		&cobra.Command{
			Use:   "add <host> <mac>",
			Short: "Add a permanent ARP entry",
			Args:  cobra.ExactArgs(2),
			RunE: withCache(func(cmd *cobra.Command, c *arpcache.Cache, args []string) error {
				pa, err := addr.Parse(args[0])
				if err != nil {
					return err
				}
				ha, err := addr.ParseLiteral(args[1])
				if err != nil {
					return err
				}
				e := arpcache.Entry{Proto: pa, Hw: ha}
				if err := c.Add(e); err != nil {
					return err
				}
				return a.done(cmd, e.String(), "added")
			}),
		},
		&cobra.Command{
			Use:   "delete <host>",
			Short: "Delete the ARP entry of host",
			Args:  cobra.ExactArgs(1),
			RunE: withCache(func(cmd *cobra.Command, c *arpcache.Cache, args []string) error {
				pa, err := addr.Parse(args[0])
				if err != nil {
					return err
				}
				if err := c.Delete(arpcache.Entry{Proto: pa}); err != nil {
					return err
				}
				return a.done(cmd, pa.String(), "deleted")
			}),
		},
	)
	return cmd
}

// parseDst reads a route destination. "default" is the IPv4 default route.
func parseDst(s string) (addr.Addr, error) {
	if s == "default" {
		return addr.ParseLiteral("0.0.0.0/0")
	}
	return addr.Parse(s)
}

func (a *app) routeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Manage the routing table",
	}

	withTable := func(fn func(cmd *cobra.Command, t *route.Table, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			t, err := a.backend.Route(a.tableOpts()...)
			if err != nil {
				return err
			}
			defer a.closeLogged(t, "route table")
			return fn(cmd, t, args)
		}
	}

	var (
		device string
		metric int
	)
	add := &cobra.Command{
		Use:   "add <dst> <gw>",
		Short: "Add a route to dst through gw",
		Args:  cobra.ExactArgs(2),
		RunE: withTable(func(cmd *cobra.Command, t *route.Table, args []string) error {
			dst, err := parseDst(args[0])
			if err != nil {
				return err
			}
			gw, err := addr.Parse(args[1])
			if err != nil {
				return err
			}
			e := route.Entry{Dst: dst, Gw: gw, Interface: device, Metric: metric}
			if err := t.Add(e); err != nil {
				return err
			}
			return a.done(cmd, e.String(), "added")
		}),
	}
	add.Flags().StringVarP(&device, "device", "d", "", "output interface")
	add.Flags().IntVar(&metric, "metric", 0, "route metric")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "List the routing table",
			Args:  cobra.NoArgs,
			RunE: withTable(func(cmd *cobra.Command, t *route.Table, _ []string) error {
				return show[route.Entry](a, cmd, t, stringer)
			}),
		},
		&cobra.Command{
			Use:   "get <dst>",
			Short: "Show the route the kernel uses to reach dst",
			Args:  cobra.ExactArgs(1),
			RunE: withTable(func(cmd *cobra.Command, t *route.Table, args []string) error {
				dst, err := addr.Parse(args[0])
				if err != nil {
					return err
				}
				e, err := t.Get(dst)
				if err != nil {
					return err
				}
				return render(a, cmd.OutOrStdout(), []route.Entry{e}, stringer)
			}),
		},
		add,
		&cobra.Command{
			Use:   "delete <dst>",
			Short: "Delete the route to dst",
			Args:  cobra.ExactArgs(1),
			RunE: withTable(func(cmd *cobra.Command, t *route.Table, args []string) error {
				dst, err := parseDst(args[0])
				if err != nil {
					return err
				}
				if err := t.Delete(route.Entry{Dst: dst}); err != nil {
					return err
				}
				return a.done(cmd, dst.String(), "deleted")
			}),
		},
	)
	return cmd
}

const ruleUsage = "allow|block in|out <device>|any <proto> <src>[:<port>[-<max>]] <dst>[:<port>[-<max>]]"

func (a *app) fwCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fw",
		Short: "Manage firewall rules",
	}

	withFirewall := func(fn func(cmd *cobra.Command, f *firewall.Firewall, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			f, err := a.backend.Firewall(a.tableOpts()...)
			if err != nil {
				return err
			}
			defer a.closeLogged(f, "firewall")
			return fn(cmd, f, args)
		}
	}
	withRule := func(verb string, apply func(*firewall.Firewall, firewall.Rule) error) func(*cobra.Command, []string) error {
		return withFirewall(func(cmd *cobra.Command, f *firewall.Firewall, args []string) error {
			r, err := firewall.ParseRule(args)
			if err != nil {
				return err
			}
			if err := apply(f, r); err != nil {
				return err
			}
			return a.done(cmd, r.String(), verb)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "List firewall rules",
			Args:  cobra.NoArgs,
			RunE: withFirewall(func(cmd *cobra.Command, f *firewall.Firewall, _ []string) error {
				return show[firewall.Rule](a, cmd, f, stringer)
			}),
		},
		&cobra.Command{
			Use:   "add " + ruleUsage,
			Short: "Add a firewall rule",
			Args:  cobra.ExactArgs(6),
			RunE:  withRule("added", (*firewall.Firewall).Add),
		},
		&cobra.Command{
			Use:   "delete " + ruleUsage,
			Short: "Delete a firewall rule",
			Args:  cobra.ExactArgs(6),
			RunE:  withRule("deleted", (*firewall.Firewall).Delete),
		},
	)
	return cmd
}

// formatIntf renders e in the ifconfig style of dnet intf show.
func formatIntf(e intf.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", e.Name)
	fmt.Fprintf(&b, "\tflags=%#x<%s> mtu %d\n", uint16(e.Flags), strings.ToUpper(e.Flags.String()), e.MTU)

	family := func(a addr.Addr) string {
		if a.Type() == addr.TypeIP6 {
			return "inet6"
		}
		return "inet"
	}
	if !e.Addr.IsZero() {
		fmt.Fprintf(&b, "\t%s %s", family(e.Addr), e.Addr)
		if !e.DstAddr.IsZero() {
			fmt.Fprintf(&b, " --> %s", e.DstAddr)
		}
		b.WriteString("\n")
	}
	if !e.LinkAddr.IsZero() {
		fmt.Fprintf(&b, "\tlink %s\n", e.LinkAddr)
	}
	for _, al := range e.Aliases {
		fmt.Fprintf(&b, "\talias %s %s\n", family(al), al)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a *app) intfCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intf",
		Short: "Inspect and configure network interfaces",
	}

	withTable := func(fn func(cmd *cobra.Command, t *intf.Table, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			t, err := a.backend.Intf(a.tableOpts()...)
			if err != nil {
				return err
			}
			defer a.closeLogged(t, "interface table")
			return fn(cmd, t, args)
		}
	}
	byAddr := func(lookup func(*intf.Table, addr.Addr) (intf.Entry, error)) func(*cobra.Command, []string) error {
		return withTable(func(cmd *cobra.Command, t *intf.Table, args []string) error {
			target, err := addr.Parse(args[0])
			if err != nil {
				return err
			}
			e, err := lookup(t, target)
			if err != nil {
				return err
			}
			return render(a, cmd.OutOrStdout(), []intf.Entry{e}, formatIntf)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "List network interfaces",
			Args:  cobra.NoArgs,
			RunE: withTable(func(cmd *cobra.Command, t *intf.Table, _ []string) error {
				return show[intf.Entry](a, cmd, t, formatIntf)
			}),
		},
		&cobra.Command{
			Use:   "get [name]",
			Short: "Show one interface (default: the configured interface)",
			Args:  cobra.MaximumNArgs(1),
			RunE: withTable(func(cmd *cobra.Command, t *intf.Table, args []string) error {
				name := a.cfg.Interface
				if len(args) == 1 {
					name = args[0]
				}
				if name == "" {
					return errors.Wrap(errUsage, "no interface given")
				}
				e, err := t.Get(name)
				if err != nil {
					return err
				}
				return render(a, cmd.OutOrStdout(), []intf.Entry{e}, formatIntf)
			}),
		},
		&cobra.Command{
			Use:   "src <addr>",
			Short: "Show the interface that owns addr",
			Args:  cobra.ExactArgs(1),
			RunE:  byAddr((*intf.Table).GetSrc),
		},
		&cobra.Command{
			Use:   "dst <addr>",
			Short: "Show the interface used to reach addr",
			Args:  cobra.ExactArgs(1),
			RunE:  byAddr((*intf.Table).GetDst),
		},
		a.intfSetCommand(withTable),
	)
	return cmd
}

func (a *app) intfSetCommand(withTable func(func(*cobra.Command, *intf.Table, []string) error) func(*cobra.Command, []string) error) *cobra.Command {
	var (
		mtu            int
		inet, peer, hw string
		aliases        []string
		up, down       bool
	)

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Change the MTU, addresses or state of an interface",
		Args:  cobra.ExactArgs(1),
		RunE: withTable(func(cmd *cobra.Command, t *intf.Table, args []string) error {
			if up && down {
				return errors.Wrap(errUsage, "--up and --down are exclusive")
			}
			e, err := t.Get(args[0])
			if err != nil {
				return err
			}

			e.Aliases = nil
			if mtu != 0 {
				e.MTU = mtu
			}
			if inet != "" {
				if e.Addr, err = addr.ParseLiteral(inet); err != nil {
					return err
				}
			}
			if peer != "" {
				if e.DstAddr, err = addr.ParseLiteral(peer); err != nil {
					return err
				}
			}
			if hw != "" {
				if e.LinkAddr, err = addr.ParseLiteral(hw); err != nil {
					return err
				}
			}
			for _, s := range aliases {
				al, err := addr.ParseLiteral(s)
				if err != nil {
					return err
				}
				e.Aliases = append(e.Aliases, al)
			}
			switch {
			case up:
				e.Flags |= intf.FlagUp
			case down:
				e.Flags &^= intf.FlagUp
			}

			if err := t.Set(e); err != nil {
				return err
			}
			return a.done(cmd, e.Name, "updated")
		}),
	}

	f := cmd.Flags()
	f.IntVar(&mtu, "mtu", 0, "MTU")
	f.StringVar(&inet, "inet", "", "primary address")
	f.StringVar(&peer, "dst", "", "point-to-point destination address")
	f.StringVar(&hw, "link", "", "link address")
	f.StringSliceVar(&aliases, "alias", nil, "additional address (repeatable)")
	f.BoolVar(&up, "up", false, "bring the interface up")
	f.BoolVar(&down, "down", false, "bring the interface down")
	return cmd
}
