package view

type Control int

const (
	ConnectControl Control = iota
	JoinControl
	LoadingIndicator
	ThankYouMessage
)

var controlNames = map[Control]string{
	ConnectControl:   "connect",
	JoinControl:      "join",
	LoadingIndicator: "loading",
	ThankYouMessage:  "thanks",
}

func (c Control) String() string {
	return controlNames[c]
}

func (c Control) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Render picks the one control the page shows for s.
func Render(s State) Control {
	switch {
	case !s.Connected:
		return ConnectControl
	case s.Joined:
		return ThankYouMessage
	case s.Loading:
		return LoadingIndicator
	default:
		return JoinControl
	}
}
