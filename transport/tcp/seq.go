package tcp

// Sequence number comparison modulo 2^32.

func SeqLT(a, b uint32) bool  { return int32(a-b) < 0 }
func SeqLEQ(a, b uint32) bool { return int32(a-b) <= 0 }
func SeqGT(a, b uint32) bool  { return int32(a-b) > 0 }
func SeqGEQ(a, b uint32) bool { return int32(a-b) >= 0 }

// State is a TCP connection state.
type State uint8

const (
	StateClosed State = iota
	StateListen
	StateSynSent
	StateSynReceived
	StateEstablished
	StateCloseWait
	StateFinWait1
	StateClosing
	StateLastAck
	StateFinWait2
	StateTimeWait
)

var stateNames = [...]string{
	"CLOSED", "LISTEN", "SYN_SENT", "SYN_RECEIVED", "ESTABLISHED",
	"CLOSE_WAIT", "FIN_WAIT_1", "CLOSING", "LAST_ACK", "FIN_WAIT_2", "TIME_WAIT",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}
