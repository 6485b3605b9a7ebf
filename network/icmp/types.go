package icmp

import "dnet/lib/symtab"

type Type uint8

// Reference: https://www.iana.org/assignments/icmp-parameters
const (
	TypeEchoReply       Type = 0
	TypeUnreach         Type = 3
	TypeSrcQuench       Type = 4
	TypeRedirect        Type = 5
	TypeAltHostAddr     Type = 6
	TypeEcho            Type = 8
	TypeRtrAdvert       Type = 9
	TypeRtrSolicit      Type = 10
	TypeTimeExceed      Type = 11
	TypeParamProb       Type = 12
	TypeTstamp          Type = 13
	TypeTstampReply     Type = 14
	TypeInfo            Type = 15
	TypeInfoReply       Type = 16
	TypeMask            Type = 17
	TypeMaskReply       Type = 18
	TypeTraceroute      Type = 30
	TypeDataConvErr     Type = 31
	TypeMobileRedirect  Type = 32
	TypeIPv6WhereAreYou Type = 33
	TypeIPv6IAmHere     Type = 34
	TypeMobileReg       Type = 35
	TypeMobileRegReply  Type = 36
	TypeDNS             Type = 37
	TypeDNSReply        Type = 38
	TypeSkip            Type = 39
	TypePhoturis        Type = 40
)

var Types = symtab.New(
	symtab.Entry[Type]{Name: "echoreply", Value: TypeEchoReply},
	symtab.Entry[Type]{Name: "unreach", Value: TypeUnreach},
	symtab.Entry[Type]{Name: "srcquench", Value: TypeSrcQuench},
	symtab.Entry[Type]{Name: "redirect", Value: TypeRedirect},
	symtab.Entry[Type]{Name: "althostaddr", Value: TypeAltHostAddr},
	symtab.Entry[Type]{Name: "echo", Value: TypeEcho},
	symtab.Entry[Type]{Name: "rtradvert", Value: TypeRtrAdvert},
	symtab.Entry[Type]{Name: "rtrsolicit", Value: TypeRtrSolicit},
	symtab.Entry[Type]{Name: "timexceed", Value: TypeTimeExceed},
	symtab.Entry[Type]{Name: "paramprob", Value: TypeParamProb},
	symtab.Entry[Type]{Name: "tstamp", Value: TypeTstamp},
	symtab.Entry[Type]{Name: "tstampreply", Value: TypeTstampReply},
	symtab.Entry[Type]{Name: "info", Value: TypeInfo},
	symtab.Entry[Type]{Name: "inforeply", Value: TypeInfoReply},
	symtab.Entry[Type]{Name: "mask", Value: TypeMask},
	symtab.Entry[Type]{Name: "maskreply", Value: TypeMaskReply},
	symtab.Entry[Type]{Name: "traceroute", Value: TypeTraceroute},
	symtab.Entry[Type]{Name: "dataconverr", Value: TypeDataConvErr},
	symtab.Entry[Type]{Name: "mobileredirect", Value: TypeMobileRedirect},
	symtab.Entry[Type]{Name: "ipv6whereareyou", Value: TypeIPv6WhereAreYou},
	symtab.Entry[Type]{Name: "ipv6iamhere", Value: TypeIPv6IAmHere},
	symtab.Entry[Type]{Name: "mobilereg", Value: TypeMobileReg},
	symtab.Entry[Type]{Name: "mobileregreply", Value: TypeMobileRegReply},
	symtab.Entry[Type]{Name: "dns", Value: TypeDNS},
	symtab.Entry[Type]{Name: "dnsreply", Value: TypeDNSReply},
	symtab.Entry[Type]{Name: "skip", Value: TypeSkip},
	symtab.Entry[Type]{Name: "photuris", Value: TypePhoturis},
)

func (t Type) String() string { return Types.String(t) }

type Code uint8

// Destination unreachable codes.
const (
	UnreachNet Code = iota
	UnreachHost
	UnreachProto
	UnreachPort
	UnreachNeedFrag
	UnreachSrcFail
	UnreachNetUnknown
	UnreachHostUnknown
	UnreachIsolated
	UnreachNetProhib
	UnreachHostProhib
	UnreachTOSNet
	UnreachTOSHost
	UnreachFilterProhib
	UnreachHostPrecedence
	UnreachPrecedenceCutoff
)

// Redirect codes.
const (
	RedirectNet Code = iota
	RedirectHost
	RedirectTOSNet
	RedirectTOSHost
)

// Router advertisement codes.
const (
	RtrAdvertNormal  Code = 0
	RtrAdvertNoRoute Code = 16
)

// Time exceeded codes.
const (
	TimeExceedIntrans Code = iota
	TimeExceedReass
)

// Parameter problem codes.
const (
	ParamProbErrAtPtr Code = iota
	ParamProbOptAbsent
	ParamProbLength
)

// RtrPrefNoDefault marks a router advertisement entry not to be used as the
// default gateway.
const RtrPrefNoDefault uint32 = 0x80000000
