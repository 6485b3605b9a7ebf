package tcp

import (
	"dnet/lib/symtab"
	"strings"
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9293#section-3.1-6.14.1
type Flags uint8

const (
	FlagFIN Flags = 0x01
	FlagSYN Flags = 0x02
	FlagRST Flags = 0x04
	FlagPSH Flags = 0x08
	FlagACK Flags = 0x10
	FlagURG Flags = 0x20
	FlagECE Flags = 0x40 // RFC 3168
	FlagCWR Flags = 0x80
)

var FlagTable = symtab.New(
	symtab.Entry[Flags]{Name: "FIN", Value: FlagFIN},
	symtab.Entry[Flags]{Name: "SYN", Value: FlagSYN},
	symtab.Entry[Flags]{Name: "RST", Value: FlagRST},
	symtab.Entry[Flags]{Name: "PSH", Value: FlagPSH},
	symtab.Entry[Flags]{Name: "ACK", Value: FlagACK},
	symtab.Entry[Flags]{Name: "URG", Value: FlagURG},
	symtab.Entry[Flags]{Name: "ECE", Value: FlagECE},
	symtab.Entry[Flags]{Name: "CWR", Value: FlagCWR},
	symtab.Entry[Flags]{Name: "PUSH", Value: FlagPSH},
)

func (f Flags) Has(flag Flags) bool { return f&flag == flag }

func (f Flags) String() string {
	return strings.Join(FlagTable.Flags(f), "|")
}

// ParseFlags accepts names separated by '|' or ',', e.g. "syn|ack".
func ParseFlags(s string) (Flags, bool) {
	return FlagTable.ParseFlags(strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ','
	}))
}

// Option kinds.
// Reference: https://www.iana.org/assignments/tcp-parameters
const (
	OptEOL        uint8 = 0
	OptNOP        uint8 = 1
	OptMSS        uint8 = 2
	OptWScale     uint8 = 3  // RFC 1072
	OptSACKOK     uint8 = 4  // RFC 2018
	OptSACK       uint8 = 5  // RFC 2018
	OptEcho       uint8 = 6  // obsolete
	OptEchoReply  uint8 = 7  // obsolete
	OptTimestamp  uint8 = 8  // RFC 1323
	OptPOConn     uint8 = 9  // RFC 1693
	OptPOSvc      uint8 = 10 // RFC 1693
	OptCC         uint8 = 11 // RFC 1644
	OptCCNew      uint8 = 12
	OptCCEcho     uint8 = 13
	OptAltSum     uint8 = 14 // RFC 1146
	OptAltSumData uint8 = 15
	OptSkeeter    uint8 = 16
	OptBubba      uint8 = 17
	OptTrailSum   uint8 = 18
	OptMD5        uint8 = 19 // RFC 2385
	OptSCPS       uint8 = 20
	OptSNACK      uint8 = 21
	OptRec        uint8 = 22
	OptCorrupt    uint8 = 23
	OptSNAP       uint8 = 24
	OptTCPComp    uint8 = 26
)
