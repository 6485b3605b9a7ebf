// Package firewall mirrors the IPv4 packet filter rules of the iptables
// filter table. Inbound rules live in the INPUT chain and outbound rules in
// OUTPUT. Rules there that a Rule cannot express are left alone and are not
// enumerated.
package firewall

import (
	"dnet/kernel"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Client is the part of *iptables.IPTables the firewall uses.
type Client interface {
	List(table, chain string) ([]string, error)
	Exists(table, chain string, rulespec ...string) (bool, error)
	Append(table, chain string, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

var _ Client = (*iptables.IPTables)(nil)

type Firewall struct {
	ipt   Client
	state kernel.State
}

var (
	_ kernel.Walker[Rule]  = (*Firewall)(nil)
	_ kernel.Mutator[Rule] = (*Firewall)(nil)
)

// Open locates the iptables tool. Every operation runs it, which needs
// CAP_NET_ADMIN.
func Open(opts ...kernel.Option) (*Firewall, error) {
	ipt, err := iptables.New()
	if err != nil {
		return nil, osError("open iptables", err)
	}
	return New(ipt, opts...), nil
}

func New(c Client, opts ...kernel.Option) *Firewall {
	return &Firewall{ipt: c, state: kernel.Opened("fw", kernel.NewOptions(opts))}
}

// osError keeps the iptables failure and attaches the errno it stands for.
func osError(op string, err error) error {
	var ierr *iptables.Error
	if errors.As(err, &ierr) {
		switch {
		case strings.Contains(ierr.Error(), "Permission denied"):
			err = errors.Wrap(unix.EPERM, ierr.Error())
		case ierr.IsNotExist():
			err = errors.Wrap(unix.ENOENT, ierr.Error())
		}
	}
	return kernel.Wrap(op, err)
}

func (f *Firewall) Loop(fn func(Rule) error) error {
	if err := f.state.Check("loop"); err != nil {
		return err
	}

	for _, chain := range []string{inputChain, outputChain} {
		lines, err := f.ipt.List(filterTable, chain)
		if err != nil {
			return osError("list "+chain, err)
		}
		for _, line := range lines {
			r, err := parse(line)
			if err != nil {
				continue
			}
			if err := fn(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Firewall) encode(r Rule) (string, []string, error) {
	chain, args, err := spec(r)
	if err != nil {
		return "", nil, errors.Wrap(kernel.ErrNotSupported, err.Error())
	}
	return chain, args, nil
}

// Add appends r to the end of its chain. A rule already present is ErrExist.
func (f *Firewall) Add(r Rule) error {
	if err := f.state.Check("add"); err != nil {
		return err
	}
	chain, args, err := f.encode(r)
	if err != nil {
		return err
	}

	ok, err := f.ipt.Exists(filterTable, chain, args...)
	if err != nil {
		return osError("check rule", err)
	}
	if ok {
		return errors.Wrapf(kernel.ErrExist, "rule %s", r)
	}
	if err := f.ipt.Append(filterTable, chain, args...); err != nil {
		return osError("add rule "+r.String(), err)
	}
	f.state.Log().WithField("rule", r.String()).Debug("added")
	return nil
}

func (f *Firewall) Delete(r Rule) error {
	if err := f.state.Check("delete"); err != nil {
		return err
	}
	chain, args, err := f.encode(r)
	if err != nil {
		return err
	}

	ok, err := f.ipt.Exists(filterTable, chain, args...)
	if err != nil {
		return osError("check rule", err)
	}
	if !ok {
		return errors.Wrapf(kernel.ErrNotFound, "rule %s", r)
	}
	if err := f.ipt.Delete(filterTable, chain, args...); err != nil {
		return osError("delete rule "+r.String(), err)
	}
	f.state.Log().WithField("rule", r.String()).Debug("deleted")
	return nil
}

// Close is idempotent. The iptables tool holds no state between calls.
func (f *Firewall) Close() error {
	f.state.Close()
	return nil
}
