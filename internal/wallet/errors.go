package wallet

import (
	"errors"
	"fmt"

	"github.com/cryptodevs/whitelist-dapp/pkg/network"
)

var (
	ErrConnectionRejected  = errors.New("wallet connection rejected")
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrNoAccount           = errors.New("wallet has no account")
)

type WrongNetworkError struct {
	Got  network.Network
	Want network.Network
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("wrong network: connected to %s, want %s", e.Got, e.Want)
}

// Alert is the message shown to the user when the wallet is on the wrong network.
func (e *WrongNetworkError) Alert() string {
	return fmt.Sprintf("Change the network to %s", e.Want.Title())
}
