// Package fwtest provides an in-memory stand-in for the iptables tool.
package fwtest

import (
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// IPTables keeps rules per chain as their joined rule specs, the way
// `iptables -S` prints them. Tables are not told apart.
type IPTables struct {
	mu     sync.Mutex
	chains map[string][]string
	err    error
}

func New() *IPTables {
	return &IPTables{chains: make(map[string][]string)}
}

// Fail makes every later call return err. A nil err clears it.
func (f *IPTables) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Insert appends a raw rule spec to chain, bypassing Append.
func (f *IPTables) Insert(chain, spec string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chains[chain] = append(f.chains[chain], spec)
}

// Rules returns the rule specs of chain.
func (f *IPTables) Rules(chain string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.chains[chain])
}

func (f *IPTables) List(table, chain string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []string{"-P " + chain + " ACCEPT"}
	for _, r := range f.chains[chain] {
		out = append(out, "-A "+chain+" "+r)
	}
	return out, nil
}

func (f *IPTables) Exists(table, chain string, rulespec ...string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return slices.Contains(f.chains[chain], strings.Join(rulespec, " ")), nil
}

func (f *IPTables) Append(table, chain string, rulespec ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.chains[chain] = append(f.chains[chain], strings.Join(rulespec, " "))
	return nil
}

func (f *IPTables) Delete(table, chain string, rulespec ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	i := slices.Index(f.chains[chain], strings.Join(rulespec, " "))
	if i < 0 {
		return errors.Errorf("no rule %q in chain %s", strings.Join(rulespec, " "), chain)
	}
	f.chains[chain] = slices.Delete(f.chains[chain], i, i+1)
	return nil
}
