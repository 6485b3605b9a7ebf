package ip

import "dnet/lib/symtab"

// Reference: https://www.iana.org/assignments/protocol-numbers/protocol-numbers.xhtml
type NextProto uint8

const (
	NextProtoIP         NextProto = 0
	NextProtoICMP       NextProto = 1
	NextProtoIGMP       NextProto = 2
	NextProtoGGP        NextProto = 3
	NextProtoIPIP       NextProto = 4
	NextProtoST         NextProto = 5
	NextProtoTCP        NextProto = 6
	NextProtoCBT        NextProto = 7
	NextProtoEGP        NextProto = 8
	NextProtoIGP        NextProto = 9
	NextProtoBBNRCC     NextProto = 10
	NextProtoNVP        NextProto = 11
	NextProtoPUP        NextProto = 12
	NextProtoARGUS      NextProto = 13
	NextProtoEMCON      NextProto = 14
	NextProtoXNET       NextProto = 15
	NextProtoCHAOS      NextProto = 16
	NextProtoUDP        NextProto = 17
	NextProtoMUX        NextProto = 18
	NextProtoDCNMEAS    NextProto = 19
	NextProtoHMP        NextProto = 20
	NextProtoPRM        NextProto = 21
	NextProtoIDP        NextProto = 22
	NextProtoTRUNK1     NextProto = 23
	NextProtoTRUNK2     NextProto = 24
	NextProtoLEAF1      NextProto = 25
	NextProtoLEAF2      NextProto = 26
	NextProtoRDP        NextProto = 27
	NextProtoIRTP       NextProto = 28
	NextProtoTP         NextProto = 29
	NextProtoNETBLT     NextProto = 30
	NextProtoMFPNSP     NextProto = 31
	NextProtoMERITINP   NextProto = 32
	NextProtoSEP        NextProto = 33
	NextProto3PC        NextProto = 34
	NextProtoIDPR       NextProto = 35
	NextProtoXTP        NextProto = 36
	NextProtoDDP        NextProto = 37
	NextProtoCMTP       NextProto = 38
	NextProtoTPPP       NextProto = 39
	NextProtoIL         NextProto = 40
	NextProtoIPV6       NextProto = 41
	NextProtoSDRP       NextProto = 42
	NextProtoROUTING    NextProto = 43
	NextProtoFRAGMENT   NextProto = 44
	NextProtoRSVP       NextProto = 46
	NextProtoGRE        NextProto = 47
	NextProtoMHRP       NextProto = 48
	NextProtoENA        NextProto = 49
	NextProtoESP        NextProto = 50
	NextProtoAH         NextProto = 51
	NextProtoINLSP      NextProto = 52
	NextProtoSWIPE      NextProto = 53
	NextProtoNARP       NextProto = 54
	NextProtoMOBILE     NextProto = 55
	NextProtoTLSP       NextProto = 56
	NextProtoSKIP       NextProto = 57
	NextProtoICMPV6     NextProto = 58
	NextProtoNONE       NextProto = 59
	NextProtoDSTOPTS    NextProto = 60
	NextProtoANYHOST    NextProto = 61
	NextProtoCFTP       NextProto = 62
	NextProtoANYNET     NextProto = 63
	NextProtoEXPAK      NextProto = 64
	NextProtoKRYPTOLAN  NextProto = 65
	NextProtoRVD        NextProto = 66
	NextProtoIPPC       NextProto = 67
	NextProtoDISTFS     NextProto = 68
	NextProtoSATMON     NextProto = 69
	NextProtoVISA       NextProto = 70
	NextProtoIPCV       NextProto = 71
	NextProtoCPNX       NextProto = 72
	NextProtoCPHB       NextProto = 73
	NextProtoWSN        NextProto = 74
	NextProtoPVP        NextProto = 75
	NextProtoBRSATMON   NextProto = 76
	NextProtoSUNND      NextProto = 77
	NextProtoWBMON      NextProto = 78
	NextProtoWBEXPAK    NextProto = 79
	NextProtoEON        NextProto = 80
	NextProtoVMTP       NextProto = 81
	NextProtoSVMTP      NextProto = 82
	NextProtoVINES      NextProto = 83
	NextProtoTTP        NextProto = 84
	NextProtoNSFIGP     NextProto = 85
	NextProtoDGP        NextProto = 86
	NextProtoTCF        NextProto = 87
	NextProtoEIGRP      NextProto = 88
	NextProtoOSPF       NextProto = 89
	NextProtoSPRITERPC  NextProto = 90
	NextProtoLARP       NextProto = 91
	NextProtoMTP        NextProto = 92
	NextProtoAX25       NextProto = 93
	NextProtoIPIPENCAP  NextProto = 94
	NextProtoMICP       NextProto = 95
	NextProtoSCCSP      NextProto = 96
	NextProtoETHERIP    NextProto = 97
	NextProtoENCAP      NextProto = 98
	NextProtoANYENC     NextProto = 99
	NextProtoGMTP       NextProto = 100
	NextProtoIFMP       NextProto = 101
	NextProtoPNNI       NextProto = 102
	NextProtoPIM        NextProto = 103
	NextProtoARIS       NextProto = 104
	NextProtoSCPS       NextProto = 105
	NextProtoQNX        NextProto = 106
	NextProtoAN         NextProto = 107
	NextProtoIPCOMP     NextProto = 108
	NextProtoSNP        NextProto = 109
	NextProtoCOMPAQPEER NextProto = 110
	NextProtoIPXIP      NextProto = 111
	NextProtoVRRP       NextProto = 112
	NextProtoPGM        NextProto = 113
	NextProtoANY0HOP    NextProto = 114
	NextProtoL2TP       NextProto = 115
	NextProtoDDX        NextProto = 116
	NextProtoIATP       NextProto = 117
	NextProtoSTP        NextProto = 118
	NextProtoSRP        NextProto = 119
	NextProtoUTI        NextProto = 120
	NextProtoSMP        NextProto = 121
	NextProtoSM         NextProto = 122
	NextProtoPTP        NextProto = 123
	NextProtoISIS       NextProto = 124
	NextProtoFIRE       NextProto = 125
	NextProtoCRTP       NextProto = 126
	NextProtoCRUDP      NextProto = 127
	NextProtoSSCOPMCE   NextProto = 128
	NextProtoIPLT       NextProto = 129
	NextProtoSPS        NextProto = 130
	NextProtoPIPE       NextProto = 131
	NextProtoSCTP       NextProto = 132
	NextProtoFC         NextProto = 133
	NextProtoRSVPIGN    NextProto = 134
	NextProtoRAW        NextProto = 255

	NextProtoHopOpts  = NextProtoIP
	NextProtoReserved = NextProtoRAW
)

var Protocols = symtab.New(
	symtab.Entry[NextProto]{Name: "ip", Value: NextProtoIP},
	symtab.Entry[NextProto]{Name: "icmp", Value: NextProtoICMP},
	symtab.Entry[NextProto]{Name: "igmp", Value: NextProtoIGMP},
	symtab.Entry[NextProto]{Name: "ggp", Value: NextProtoGGP},
	symtab.Entry[NextProto]{Name: "ipip", Value: NextProtoIPIP},
	symtab.Entry[NextProto]{Name: "st", Value: NextProtoST},
	symtab.Entry[NextProto]{Name: "tcp", Value: NextProtoTCP},
	symtab.Entry[NextProto]{Name: "cbt", Value: NextProtoCBT},
	symtab.Entry[NextProto]{Name: "egp", Value: NextProtoEGP},
	symtab.Entry[NextProto]{Name: "igp", Value: NextProtoIGP},
	symtab.Entry[NextProto]{Name: "bbnrcc", Value: NextProtoBBNRCC},
	symtab.Entry[NextProto]{Name: "nvp", Value: NextProtoNVP},
	symtab.Entry[NextProto]{Name: "pup", Value: NextProtoPUP},
	symtab.Entry[NextProto]{Name: "argus", Value: NextProtoARGUS},
	symtab.Entry[NextProto]{Name: "emcon", Value: NextProtoEMCON},
	symtab.Entry[NextProto]{Name: "xnet", Value: NextProtoXNET},
	symtab.Entry[NextProto]{Name: "chaos", Value: NextProtoCHAOS},
	symtab.Entry[NextProto]{Name: "udp", Value: NextProtoUDP},
	symtab.Entry[NextProto]{Name: "mux", Value: NextProtoMUX},
	symtab.Entry[NextProto]{Name: "dcnmeas", Value: NextProtoDCNMEAS},
	symtab.Entry[NextProto]{Name: "hmp", Value: NextProtoHMP},
	symtab.Entry[NextProto]{Name: "prm", Value: NextProtoPRM},
	symtab.Entry[NextProto]{Name: "idp", Value: NextProtoIDP},
	symtab.Entry[NextProto]{Name: "trunk1", Value: NextProtoTRUNK1},
	symtab.Entry[NextProto]{Name: "trunk2", Value: NextProtoTRUNK2},
	symtab.Entry[NextProto]{Name: "leaf1", Value: NextProtoLEAF1},
	symtab.Entry[NextProto]{Name: "leaf2", Value: NextProtoLEAF2},
	symtab.Entry[NextProto]{Name: "rdp", Value: NextProtoRDP},
	symtab.Entry[NextProto]{Name: "irtp", Value: NextProtoIRTP},
	symtab.Entry[NextProto]{Name: "tp", Value: NextProtoTP},
	symtab.Entry[NextProto]{Name: "netblt", Value: NextProtoNETBLT},
	symtab.Entry[NextProto]{Name: "mfpnsp", Value: NextProtoMFPNSP},
	symtab.Entry[NextProto]{Name: "meritinp", Value: NextProtoMERITINP},
	symtab.Entry[NextProto]{Name: "sep", Value: NextProtoSEP},
	symtab.Entry[NextProto]{Name: "3pc", Value: NextProto3PC},
	symtab.Entry[NextProto]{Name: "idpr", Value: NextProtoIDPR},
	symtab.Entry[NextProto]{Name: "xtp", Value: NextProtoXTP},
	symtab.Entry[NextProto]{Name: "ddp", Value: NextProtoDDP},
	symtab.Entry[NextProto]{Name: "cmtp", Value: NextProtoCMTP},
	symtab.Entry[NextProto]{Name: "tppp", Value: NextProtoTPPP},
	symtab.Entry[NextProto]{Name: "il", Value: NextProtoIL},
	symtab.Entry[NextProto]{Name: "ipv6", Value: NextProtoIPV6},
	symtab.Entry[NextProto]{Name: "sdrp", Value: NextProtoSDRP},
	symtab.Entry[NextProto]{Name: "routing", Value: NextProtoROUTING},
	symtab.Entry[NextProto]{Name: "fragment", Value: NextProtoFRAGMENT},
	symtab.Entry[NextProto]{Name: "rsvp", Value: NextProtoRSVP},
	symtab.Entry[NextProto]{Name: "gre", Value: NextProtoGRE},
	symtab.Entry[NextProto]{Name: "mhrp", Value: NextProtoMHRP},
	symtab.Entry[NextProto]{Name: "ena", Value: NextProtoENA},
	symtab.Entry[NextProto]{Name: "esp", Value: NextProtoESP},
	symtab.Entry[NextProto]{Name: "ah", Value: NextProtoAH},
	symtab.Entry[NextProto]{Name: "inlsp", Value: NextProtoINLSP},
	symtab.Entry[NextProto]{Name: "swipe", Value: NextProtoSWIPE},
	symtab.Entry[NextProto]{Name: "narp", Value: NextProtoNARP},
	symtab.Entry[NextProto]{Name: "mobile", Value: NextProtoMOBILE},
	symtab.Entry[NextProto]{Name: "tlsp", Value: NextProtoTLSP},
	symtab.Entry[NextProto]{Name: "skip", Value: NextProtoSKIP},
	symtab.Entry[NextProto]{Name: "icmpv6", Value: NextProtoICMPV6},
	symtab.Entry[NextProto]{Name: "none", Value: NextProtoNONE},
	symtab.Entry[NextProto]{Name: "dstopts", Value: NextProtoDSTOPTS},
	symtab.Entry[NextProto]{Name: "anyhost", Value: NextProtoANYHOST},
	symtab.Entry[NextProto]{Name: "cftp", Value: NextProtoCFTP},
	symtab.Entry[NextProto]{Name: "anynet", Value: NextProtoANYNET},
	symtab.Entry[NextProto]{Name: "expak", Value: NextProtoEXPAK},
	symtab.Entry[NextProto]{Name: "kryptolan", Value: NextProtoKRYPTOLAN},
	symtab.Entry[NextProto]{Name: "rvd", Value: NextProtoRVD},
	symtab.Entry[NextProto]{Name: "ippc", Value: NextProtoIPPC},
	symtab.Entry[NextProto]{Name: "distfs", Value: NextProtoDISTFS},
	symtab.Entry[NextProto]{Name: "satmon", Value: NextProtoSATMON},
	symtab.Entry[NextProto]{Name: "visa", Value: NextProtoVISA},
	symtab.Entry[NextProto]{Name: "ipcv", Value: NextProtoIPCV},
	symtab.Entry[NextProto]{Name: "cpnx", Value: NextProtoCPNX},
	symtab.Entry[NextProto]{Name: "cphb", Value: NextProtoCPHB},
	symtab.Entry[NextProto]{Name: "wsn", Value: NextProtoWSN},
	symtab.Entry[NextProto]{Name: "pvp", Value: NextProtoPVP},
	symtab.Entry[NextProto]{Name: "brsatmon", Value: NextProtoBRSATMON},
	symtab.Entry[NextProto]{Name: "sunnd", Value: NextProtoSUNND},
	symtab.Entry[NextProto]{Name: "wbmon", Value: NextProtoWBMON},
	symtab.Entry[NextProto]{Name: "wbexpak", Value: NextProtoWBEXPAK},
	symtab.Entry[NextProto]{Name: "eon", Value: NextProtoEON},
	symtab.Entry[NextProto]{Name: "vmtp", Value: NextProtoVMTP},
	symtab.Entry[NextProto]{Name: "svmtp", Value: NextProtoSVMTP},
	symtab.Entry[NextProto]{Name: "vines", Value: NextProtoVINES},
	symtab.Entry[NextProto]{Name: "ttp", Value: NextProtoTTP},
	symtab.Entry[NextProto]{Name: "nsfigp", Value: NextProtoNSFIGP},
	symtab.Entry[NextProto]{Name: "dgp", Value: NextProtoDGP},
	symtab.Entry[NextProto]{Name: "tcf", Value: NextProtoTCF},
	symtab.Entry[NextProto]{Name: "eigrp", Value: NextProtoEIGRP},
	symtab.Entry[NextProto]{Name: "ospf", Value: NextProtoOSPF},
	symtab.Entry[NextProto]{Name: "spriterpc", Value: NextProtoSPRITERPC},
	symtab.Entry[NextProto]{Name: "larp", Value: NextProtoLARP},
	symtab.Entry[NextProto]{Name: "mtp", Value: NextProtoMTP},
	symtab.Entry[NextProto]{Name: "ax25", Value: NextProtoAX25},
	symtab.Entry[NextProto]{Name: "ipipencap", Value: NextProtoIPIPENCAP},
	symtab.Entry[NextProto]{Name: "micp", Value: NextProtoMICP},
	symtab.Entry[NextProto]{Name: "sccsp", Value: NextProtoSCCSP},
	symtab.Entry[NextProto]{Name: "etherip", Value: NextProtoETHERIP},
	symtab.Entry[NextProto]{Name: "encap", Value: NextProtoENCAP},
	symtab.Entry[NextProto]{Name: "anyenc", Value: NextProtoANYENC},
	symtab.Entry[NextProto]{Name: "gmtp", Value: NextProtoGMTP},
	symtab.Entry[NextProto]{Name: "ifmp", Value: NextProtoIFMP},
	symtab.Entry[NextProto]{Name: "pnni", Value: NextProtoPNNI},
	symtab.Entry[NextProto]{Name: "pim", Value: NextProtoPIM},
	symtab.Entry[NextProto]{Name: "aris", Value: NextProtoARIS},
	symtab.Entry[NextProto]{Name: "scps", Value: NextProtoSCPS},
	symtab.Entry[NextProto]{Name: "qnx", Value: NextProtoQNX},
	symtab.Entry[NextProto]{Name: "an", Value: NextProtoAN},
	symtab.Entry[NextProto]{Name: "ipcomp", Value: NextProtoIPCOMP},
	symtab.Entry[NextProto]{Name: "snp", Value: NextProtoSNP},
	symtab.Entry[NextProto]{Name: "compaqpeer", Value: NextProtoCOMPAQPEER},
	symtab.Entry[NextProto]{Name: "ipxip", Value: NextProtoIPXIP},
	symtab.Entry[NextProto]{Name: "vrrp", Value: NextProtoVRRP},
	symtab.Entry[NextProto]{Name: "pgm", Value: NextProtoPGM},
	symtab.Entry[NextProto]{Name: "any0hop", Value: NextProtoANY0HOP},
	symtab.Entry[NextProto]{Name: "l2tp", Value: NextProtoL2TP},
	symtab.Entry[NextProto]{Name: "ddx", Value: NextProtoDDX},
	symtab.Entry[NextProto]{Name: "iatp", Value: NextProtoIATP},
	symtab.Entry[NextProto]{Name: "stp", Value: NextProtoSTP},
	symtab.Entry[NextProto]{Name: "srp", Value: NextProtoSRP},
	symtab.Entry[NextProto]{Name: "uti", Value: NextProtoUTI},
	symtab.Entry[NextProto]{Name: "smp", Value: NextProtoSMP},
	symtab.Entry[NextProto]{Name: "sm", Value: NextProtoSM},
	symtab.Entry[NextProto]{Name: "ptp", Value: NextProtoPTP},
	symtab.Entry[NextProto]{Name: "isis", Value: NextProtoISIS},
	symtab.Entry[NextProto]{Name: "fire", Value: NextProtoFIRE},
	symtab.Entry[NextProto]{Name: "crtp", Value: NextProtoCRTP},
	symtab.Entry[NextProto]{Name: "crudp", Value: NextProtoCRUDP},
	symtab.Entry[NextProto]{Name: "sscopmce", Value: NextProtoSSCOPMCE},
	symtab.Entry[NextProto]{Name: "iplt", Value: NextProtoIPLT},
	symtab.Entry[NextProto]{Name: "sps", Value: NextProtoSPS},
	symtab.Entry[NextProto]{Name: "pipe", Value: NextProtoPIPE},
	symtab.Entry[NextProto]{Name: "sctp", Value: NextProtoSCTP},
	symtab.Entry[NextProto]{Name: "fc", Value: NextProtoFC},
	symtab.Entry[NextProto]{Name: "rsvpign", Value: NextProtoRSVPIGN},
	symtab.Entry[NextProto]{Name: "raw", Value: NextProtoRAW},
)

func (p NextProto) String() string { return Protocols.String(p) }

// ParseProto accepts a protocol name such as "tcp" or a number.
func ParseProto(s string) (NextProto, bool) { return Protocols.Parse(s) }
