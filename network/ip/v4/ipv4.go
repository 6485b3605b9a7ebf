package ipv4

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	AddrLen  = 4
	AddrBits = 32
)

type Addr [AddrLen]byte

var (
	AddrAny       = Addr{0, 0, 0, 0}
	AddrBroadcast = Addr{255, 255, 255, 255}
	AddrLoopback  = Addr{127, 0, 0, 1}
)

func ParseAddr(s string) (Addr, error) {
	digits := strings.Split(s, ".")
	if len(digits) != 4 {
		return Addr{}, errors.New("digits are not properly seperated")
	}

	var addr Addr
	for idx, digit := range digits {
		n, err := strconv.ParseUint(digit, 10, 8)
		if err != nil {
			return Addr{}, errors.Wrap(err, "failed to parse a part into digit")
		}

		if digit[0] == '0' && !(n == 0 && len(digit) == 1) {
			// '00', '01'
			return Addr{}, errors.New("leading zero is not allowed in digit")
		}
		addr[idx] = byte(n)
	}

	return addr, nil
}

func AddrFromUint32(u32 uint32) Addr {
	var addr Addr
	binary.BigEndian.PutUint32(addr[:], u32)
	return addr
}

func (a Addr) ToUint32() uint32 { return binary.BigEndian.Uint32(a[:]) }

func (a Addr) Raw() []byte   { return a[:] }
func (a Addr) Version() uint { return 4 }

func (a Addr) String() string {
	b := make([]byte, 0, 15)
	for idx, n := range a {
		if idx > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendUint(b, uint64(n), 10)
	}
	return string(b)
}

func (a Addr) IsMulticast() bool { return a[0]&0xf0 == 0xe0 }
