// Package cli implements the dnet command line tool: packet builders that
// compose through pipes, device senders and the kernel table commands.
package cli

import (
	"context"
	"dnet/addr"
	"dnet/internal/config"
	dlog "dnet/internal/log"
	"dnet/kernel"
	"dnet/kernel/arpcache"
	"dnet/kernel/firewall"
	"dnet/kernel/intf"
	"dnet/kernel/route"
	"dnet/link"
	"dnet/link/eth"
	ipv4 "dnet/network/ip/v4"
	"dnet/tunnel"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Sender transmits complete packets or frames.
type Sender interface {
	Send(b []byte) (int, error)
	Close() error
}

// Backend opens the system resources commands operate on.
type Backend struct {
	ARP      func(opts ...kernel.Option) (*arpcache.Cache, error)
	Route    func(opts ...kernel.Option) (*route.Table, error)
	Firewall func(opts ...kernel.Option) (*firewall.Firewall, error)
	Intf     func(opts ...kernel.Option) (*intf.Table, error)

	Eth    func(device string, log logrus.FieldLogger) (Sender, error)
	IP     func(log logrus.FieldLogger) (Sender, error)
	Tunnel func(src, dst addr.Addr, mtu int, log logrus.FieldLogger) (link.Device, error)
}

// System is the Backend of the real host.
var System = Backend{
	ARP:      arpcache.Open,
	Route:    route.Open,
	Firewall: firewall.Open,
	Intf:     intf.Open,

	Eth: func(device string, log logrus.FieldLogger) (Sender, error) {
		h, err := eth.Open(device, eth.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return h, nil
	},
	IP: func(log logrus.FieldLogger) (Sender, error) {
		h, err := ipv4.OpenRaw(ipv4.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return h, nil
	},
	Tunnel: func(src, dst addr.Addr, mtu int, log logrus.FieldLogger) (link.Device, error) {
		t, err := tunnel.Open(src, dst, mtu, tunnel.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return t, nil
	},
}

type app struct {
	backend    Backend
	configPath string

	cfg *config.Config
	log *logrus.Logger
}

// NewCommand builds the dnet command tree on top of b.
func NewCommand(b Backend) *cobra.Command {
	a := &app{backend: b}

	root := &cobra.Command{
		Use:               "dnet",
		Short:             "Build, send and inspect packets and kernel network tables",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	pf.StringP("interface", "i", "", "default network interface")
	pf.String("log-level", "", "log level (panic, fatal, error, warn, info, debug, trace)")
	pf.StringP("output", "o", "", "output format: text or yaml")

	root.AddCommand(
		a.addrCommand(),
		a.hexCommand(),
		a.randCommand(),
		a.ethCommand(),
		a.arpCommand(),
		a.ipCommand(),
		a.icmpCommand(),
		a.tcpCommand(),
		a.udpCommand(),
		a.sendCommand(),
		a.decodeCommand(),
		a.routeCommand(),
		a.fwCommand(),
		a.intfCommand(),
		a.tunCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	log, err := dlog.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) tableOpts() []kernel.Option {
	return []kernel.Option{kernel.WithLogger(a.log)}
}

// Execute runs dnet with the process arguments.
func Execute(ctx context.Context) error {
	return NewCommand(System).ExecuteContext(ctx)
}

// closeLogged closes c and logs a failure, for deferred cleanup.
func (a *app) closeLogged(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		a.log.WithError(err).Warnf("closing %s", what)
	}
}
