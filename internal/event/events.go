package event

type Type string

const (
	StateChangedEvent    Type = "StateChangedEvent"
	WalletConnectedEvent Type = "WalletConnectedEvent"
	WhitelistJoinedEvent Type = "WhitelistJoinedEvent"
	FailureEvent         Type = "FailureEvent"
)
