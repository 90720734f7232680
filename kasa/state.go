package kasa

// RelayState is a relay position as reported or commanded over the wire.
// Unknown is a local "not observed yet" sentinel, never a valid wire value.
type RelayState uint8

const (
	Off     RelayState = 0
	On      RelayState = 1
	Unknown RelayState = 2
)

func (s RelayState) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	}
	return "unknown"
}
