// Package arp implements the Address Resolution Protocol header and its
// Ethernet/IPv4 body (RFC 826).
package arp

import (
	"dnet/lib/codec"
	"dnet/lib/symtab"
	"dnet/link/eth"
	ipv4 "dnet/network/ip/v4"
	"encoding/binary"
)

const (
	HeaderLen = 8
	EthIPLen  = 2*eth.AddrLen + 2*ipv4.AddrLen
	// PacketLen is the size of a complete Ethernet/IPv4 ARP message.
	PacketLen = HeaderLen + EthIPLen
)

// Hardware address formats.
const (
	HrdEth      uint16 = 0x0001
	HrdIEEE802  uint16 = 0x0006
	HrdFrelay   uint16 = 0x000f
	HrdIEEE1394 uint16 = 0x0018
)

const ProIP uint16 = 0x0800

type Op uint16

const (
	OpRequest    Op = 1
	OpReply      Op = 2
	OpRevRequest Op = 3
	OpRevReply   Op = 4
)

var Ops = symtab.New(
	symtab.Entry[Op]{Name: "request", Value: OpRequest},
	symtab.Entry[Op]{Name: "reply", Value: OpReply},
	symtab.Entry[Op]{Name: "revrequest", Value: OpRevRequest},
	symtab.Entry[Op]{Name: "revreply", Value: OpRevReply},
)

func (o Op) String() string { return Ops.String(o) }

type Header struct {
	Hrd uint16 // format of hardware address
	Pro uint16 // format of protocol address
	Hln uint8  // length of hardware address
	Pln uint8  // length of protocol address
	Op  Op
}

func Decode(b []byte) (Header, error) {
	if err := codec.Need("arp header", b, HeaderLen); err != nil {
		return Header{}, err
	}
	return Header{
		Hrd: binary.BigEndian.Uint16(b[0:2]),
		Pro: binary.BigEndian.Uint16(b[2:4]),
		Hln: b[4],
		Pln: b[5],
		Op:  Op(binary.BigEndian.Uint16(b[6:8])),
	}, nil
}

func (h Header) AppendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, h.Hrd)
	b = binary.BigEndian.AppendUint16(b, h.Pro)
	b = append(b, h.Hln, h.Pln)
	return binary.BigEndian.AppendUint16(b, uint16(h.Op))
}

func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderLen))
}

// EthIP is the body of an ARP message mapping IPv4 to Ethernet addresses.
type EthIP struct {
	SrcHw eth.Addr
	SrcIP ipv4.Addr
	DstHw eth.Addr
	DstIP ipv4.Addr
}

func DecodeEthIP(b []byte) (EthIP, error) {
	if err := codec.Need("arp ethip body", b, EthIPLen); err != nil {
		return EthIP{}, err
	}

	var e EthIP
	copy(e.SrcHw[:], b[0:6])
	copy(e.SrcIP[:], b[6:10])
	copy(e.DstHw[:], b[10:16])
	copy(e.DstIP[:], b[16:20])
	return e, nil
}

func (e EthIP) AppendTo(b []byte) []byte {
	b = append(b, e.SrcHw[:]...)
	b = append(b, e.SrcIP[:]...)
	b = append(b, e.DstHw[:]...)
	return append(b, e.DstIP[:]...)
}

// PackEthIP builds a complete Ethernet/IPv4 ARP message.
func PackEthIP(op Op, sha eth.Addr, spa ipv4.Addr, tha eth.Addr, tpa ipv4.Addr) []byte {
	h := Header{Hrd: HrdEth, Pro: ProIP, Hln: eth.AddrLen, Pln: ipv4.AddrLen, Op: op}
	b := h.AppendTo(make([]byte, 0, PacketLen))
	return EthIP{SrcHw: sha, SrcIP: spa, DstHw: tha, DstIP: tpa}.AppendTo(b)
}

// ParseEthIP decodes a complete Ethernet/IPv4 ARP message.
func ParseEthIP(b []byte) (Header, EthIP, error) {
	h, err := Decode(b)
	if err != nil {
		return Header{}, EthIP{}, err
	}
	e, err := DecodeEthIP(b[HeaderLen:])
	if err != nil {
		return Header{}, EthIP{}, err
	}
	return h, e, nil
}
