package view

import (
	"errors"
	"fmt"

	"github.com/cryptodevs/whitelist-dapp/internal/wallet"
	"github.com/cryptodevs/whitelist-dapp/internal/whitelist"
)

var (
	ErrNotConnected  = errors.New("wallet not connected")
	ErrAlreadyJoined = errors.New("already joined the whitelist")
	ErrJoinInFlight  = errors.New("join already in progress")
)

type FailureKind string

const (
	ConnectionRejected FailureKind = "connection_rejected"
	WrongNetwork       FailureKind = "wrong_network"
	ContractCallFailed FailureKind = "contract_call_failed"
	TransactionFailed  FailureKind = "transaction_failed"
)

type Op string

const (
	OpConnect    Op = "connect"
	OpMembership Op = "membership"
	OpCount      Op = "count"
	OpJoin       Op = "join"
)

// Failure is an action that did not complete. Blocking failures need the user's attention
// before anything else, the page shows them as an alert.
type Failure struct {
	Kind     FailureKind `json:"kind"`
	Op       Op          `json:"op"`
	Message  string      `json:"message"`
	Blocking bool        `json:"blocking"`

	err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Op, f.err)
}

func (f *Failure) Unwrap() error {
	return f.err
}

// classify turns err into a Failure. fallback is used when err carries no kind of its own.
func classify(op Op, fallback FailureKind, err error) *Failure {
	f := &Failure{Kind: fallback, Op: op, Message: err.Error(), err: err}

	var wrongNetwork *wallet.WrongNetworkError
	switch {
	case errors.As(err, &wrongNetwork):
		f.Kind = WrongNetwork
		f.Message = wrongNetwork.Alert()
		f.Blocking = true
	case errors.Is(err, wallet.ErrConnectionRejected),
		errors.Is(err, wallet.ErrProviderUnavailable),
		errors.Is(err, wallet.ErrNoAccount):
		f.Kind = ConnectionRejected
	case errors.Is(err, whitelist.ErrTransactionFailed):
		f.Kind = TransactionFailed
	}

	return f
}
