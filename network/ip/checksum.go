package ip

import (
	"dnet/lib/checksum"
	"encoding/binary"
)

type transportSum struct {
	offset int
	minLen int
	pseudo bool
}

// Checksum field layout of the transport protocols the IP helpers fill in.
var transportSums = map[NextProto]transportSum{
	NextProtoTCP:    {offset: 16, minLen: 20, pseudo: true},
	NextProtoUDP:    {offset: 6, minLen: 8, pseudo: true},
	NextProtoICMP:   {offset: 2, minLen: 4},
	NextProtoIGMP:   {offset: 2, minLen: 4},
	NextProtoICMPV6: {offset: 2, minLen: 4, pseudo: true},
}

// SetTransportChecksum fills the checksum field of seg, a transport segment
// carried as proto. pseudo is the partial sum of the pseudo-header. It
// reports false when proto has no known checksum or seg is too short.
func SetTransportChecksum(proto NextProto, seg []byte, pseudo uint32) bool {
	ts, ok := transportSums[proto]
	if !ok || len(seg) < ts.minLen {
		return false
	}

	binary.BigEndian.PutUint16(seg[ts.offset:], 0)
	var acc uint32
	if ts.pseudo {
		acc = pseudo
	}
	sum := checksum.Fold(checksum.Sum(seg, acc))
	if proto == NextProtoUDP && sum == 0 {
		// Zero means "no checksum" for UDP.
		sum = 0xffff
	}
	binary.BigEndian.PutUint16(seg[ts.offset:], sum)
	return true
}

// VerifyTransportChecksum checks seg the same way. A zero UDP checksum is
// accepted as absent.
func VerifyTransportChecksum(proto NextProto, seg []byte, pseudo uint32) (valid, known bool) {
	ts, ok := transportSums[proto]
	if !ok || len(seg) < ts.minLen {
		return false, false
	}
	if proto == NextProtoUDP && binary.BigEndian.Uint16(seg[ts.offset:]) == 0 {
		return true, true
	}

	var acc uint32
	if ts.pseudo {
		acc = pseudo
	}
	return checksum.Fold(checksum.Sum(seg, acc)) == 0, true
}
