package network

// Addr is a fixed-width protocol address.
type Addr interface {
	String() string
	Raw() []byte
}

// Packet is a decoded network-layer packet.
type Packet interface {
	// Payload returns the bytes following the header and its options.
	Payload() []byte
}
