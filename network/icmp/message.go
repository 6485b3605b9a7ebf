package icmp

import (
	"dnet/lib/codec"
	ipv4 "dnet/network/ip/v4"
	"encoding/binary"
)

// Echo is the body of echo and echo reply messages.
type Echo struct {
	ID   uint16
	Seq  uint16
	Data []byte
}

func (m *Echo) Len() int { return 4 + len(m.Data) }

func (m *Echo) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.ID)
	b = binary.BigEndian.AppendUint16(b, m.Seq)
	return append(b, m.Data...)
}

func DecodeEcho(b []byte) (*Echo, error) {
	if err := codec.Need("icmp echo", b, 4); err != nil {
		return nil, err
	}
	return &Echo{
		ID:   binary.BigEndian.Uint16(b[0:2]),
		Seq:  binary.BigEndian.Uint16(b[2:4]),
		Data: b[4:],
	}, nil
}

// Quote carries the leading bytes of the offending datagram, as sent with
// unreachable, source quench and time exceeded messages.
type Quote struct {
	Unused uint32
	Data   []byte
}

func (m *Quote) Len() int { return 4 + len(m.Data) }

func (m *Quote) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, m.Unused)
	return append(b, m.Data...)
}

func DecodeQuote(b []byte) (*Quote, error) {
	if err := codec.Need("icmp quote", b, 4); err != nil {
		return nil, err
	}
	return &Quote{Unused: binary.BigEndian.Uint32(b[0:4]), Data: b[4:]}, nil
}

// NeedFrag is the body of a fragmentation needed message (RFC 1191).
type NeedFrag struct {
	MTU  uint16
	Data []byte
}

func (m *NeedFrag) Len() int { return 4 + len(m.Data) }

func (m *NeedFrag) AppendTo(b []byte) []byte {
	b = append(b, 0, 0)
	b = binary.BigEndian.AppendUint16(b, m.MTU)
	return append(b, m.Data...)
}

func DecodeNeedFrag(b []byte) (*NeedFrag, error) {
	if err := codec.Need("icmp need-frag", b, 4); err != nil {
		return nil, err
	}
	return &NeedFrag{MTU: binary.BigEndian.Uint16(b[2:4]), Data: b[4:]}, nil
}

type Redirect struct {
	Gateway ipv4.Addr
	Data    []byte
}

func (m *Redirect) Len() int { return ipv4.AddrLen + len(m.Data) }

func (m *Redirect) AppendTo(b []byte) []byte {
	b = append(b, m.Gateway[:]...)
	return append(b, m.Data...)
}

func DecodeRedirect(b []byte) (*Redirect, error) {
	if err := codec.Need("icmp redirect", b, ipv4.AddrLen); err != nil {
		return nil, err
	}
	m := &Redirect{Data: b[ipv4.AddrLen:]}
	copy(m.Gateway[:], b)
	return m, nil
}

// ParamProb points at the octet where the error was detected.
type ParamProb struct {
	Pointer uint8
	Data    []byte
}

func (m *ParamProb) Len() int { return 4 + len(m.Data) }

func (m *ParamProb) AppendTo(b []byte) []byte {
	b = append(b, m.Pointer, 0, 0, 0)
	return append(b, m.Data...)
}

func DecodeParamProb(b []byte) (*ParamProb, error) {
	if err := codec.Need("icmp paramprob", b, 4); err != nil {
		return nil, err
	}
	return &ParamProb{Pointer: b[0], Data: b[4:]}, nil
}

type RtrAddr struct {
	Addr       ipv4.Addr
	Preference uint32
}

// RtrAdvert is a router advertisement (RFC 1256).
type RtrAdvert struct {
	Lifetime uint16
	Addrs    []RtrAddr
}

const rtrAddrWords = 2

func (m *RtrAdvert) Len() int { return 4 + len(m.Addrs)*rtrAddrWords*4 }

func (m *RtrAdvert) AppendTo(b []byte) []byte {
	b = append(b, uint8(len(m.Addrs)), rtrAddrWords)
	b = binary.BigEndian.AppendUint16(b, m.Lifetime)
	for _, a := range m.Addrs {
		b = append(b, a.Addr[:]...)
		b = binary.BigEndian.AppendUint32(b, a.Preference)
	}
	return b
}

func DecodeRtrAdvert(b []byte) (*RtrAdvert, error) {
	if err := codec.Need("icmp rtradvert", b, 4); err != nil {
		return nil, err
	}
	n, words := int(b[0]), int(b[1])
	if words < rtrAddrWords {
		words = rtrAddrWords
	}
	if err := codec.Need("icmp rtradvert", b, 4+n*words*4); err != nil {
		return nil, err
	}

	m := &RtrAdvert{Lifetime: binary.BigEndian.Uint16(b[2:4]), Addrs: make([]RtrAddr, n)}
	for i := range m.Addrs {
		entry := b[4+i*words*4:]
		copy(m.Addrs[i].Addr[:], entry)
		m.Addrs[i].Preference = binary.BigEndian.Uint32(entry[4:8])
	}
	return m, nil
}

// Timestamp is the body of timestamp and timestamp reply messages. Times are
// milliseconds since midnight UT.
type Timestamp struct {
	ID       uint16
	Seq      uint16
	Origin   uint32
	Receive  uint32
	Transmit uint32
}

func (m *Timestamp) Len() int { return 16 }

func (m *Timestamp) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.ID)
	b = binary.BigEndian.AppendUint16(b, m.Seq)
	b = binary.BigEndian.AppendUint32(b, m.Origin)
	b = binary.BigEndian.AppendUint32(b, m.Receive)
	return binary.BigEndian.AppendUint32(b, m.Transmit)
}

func DecodeTimestamp(b []byte) (*Timestamp, error) {
	if err := codec.Need("icmp timestamp", b, 16); err != nil {
		return nil, err
	}
	return &Timestamp{
		ID:       binary.BigEndian.Uint16(b[0:2]),
		Seq:      binary.BigEndian.Uint16(b[2:4]),
		Origin:   binary.BigEndian.Uint32(b[4:8]),
		Receive:  binary.BigEndian.Uint32(b[8:12]),
		Transmit: binary.BigEndian.Uint32(b[12:16]),
	}, nil
}

// Mask is the body of address mask request and reply messages (RFC 950).
type Mask struct {
	ID   uint16
	Seq  uint16
	Mask ipv4.Addr
}

func (m *Mask) Len() int { return 8 }

func (m *Mask) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.ID)
	b = binary.BigEndian.AppendUint16(b, m.Seq)
	return append(b, m.Mask[:]...)
}

func DecodeMask(b []byte) (*Mask, error) {
	if err := codec.Need("icmp mask", b, 8); err != nil {
		return nil, err
	}
	m := &Mask{ID: binary.BigEndian.Uint16(b[0:2]), Seq: binary.BigEndian.Uint16(b[2:4])}
	copy(m.Mask[:], b[4:8])
	return m, nil
}

// Traceroute is the body of a traceroute message (RFC 1393).
type Traceroute struct {
	ID         uint16
	OutHops    uint16
	ReturnHops uint16
	Speed      uint32
	MTU        uint32
}

func (m *Traceroute) Len() int { return 16 }

func (m *Traceroute) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.ID)
	b = append(b, 0, 0)
	b = binary.BigEndian.AppendUint16(b, m.OutHops)
	b = binary.BigEndian.AppendUint16(b, m.ReturnHops)
	b = binary.BigEndian.AppendUint32(b, m.Speed)
	return binary.BigEndian.AppendUint32(b, m.MTU)
}

func DecodeTraceroute(b []byte) (*Traceroute, error) {
	if err := codec.Need("icmp traceroute", b, 16); err != nil {
		return nil, err
	}
	return &Traceroute{
		ID:         binary.BigEndian.Uint16(b[0:2]),
		OutHops:    binary.BigEndian.Uint16(b[4:6]),
		ReturnHops: binary.BigEndian.Uint16(b[6:8]),
		Speed:      binary.BigEndian.Uint32(b[8:12]),
		MTU:        binary.BigEndian.Uint32(b[12:16]),
	}, nil
}

// DNSReply is the body of a domain name reply (RFC 1788). Names holds the
// encoded name list as is.
type DNSReply struct {
	ID    uint16
	Seq   uint16
	TTL   int32
	Names []byte
}

func (m *DNSReply) Len() int { return 8 + len(m.Names) }

func (m *DNSReply) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, m.ID)
	b = binary.BigEndian.AppendUint16(b, m.Seq)
	b = binary.BigEndian.AppendUint32(b, uint32(m.TTL))
	return append(b, m.Names...)
}

func DecodeDNSReply(b []byte) (*DNSReply, error) {
	if err := codec.Need("icmp dnsreply", b, 8); err != nil {
		return nil, err
	}
	return &DNSReply{
		ID:    binary.BigEndian.Uint16(b[0:2]),
		Seq:   binary.BigEndian.Uint16(b[2:4]),
		TTL:   int32(binary.BigEndian.Uint32(b[4:8])),
		Names: b[8:],
	}, nil
}
