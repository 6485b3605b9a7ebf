//go:build !linux

package nl

import (
	"dnet/kernel"

	"github.com/pkg/errors"
)

func Open() (Client, error) {
	return nil, errors.Wrap(kernel.ErrNotSupported, "netlink")
}
