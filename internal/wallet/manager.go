package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cryptodevs/whitelist-dapp/internal/ethereum"
	"github.com/cryptodevs/whitelist-dapp/pkg/network"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Connected
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type ConnectionState struct {
	Phase   Phase
	Network network.Network
}

// Handle is a read-only view of the chain through the wallet's provider.
type Handle interface {
	Network() network.Network
	Backend() ethereum.Backend
}

// Signer is a Handle bound to the wallet account.
type Signer interface {
	Handle
	Address() common.Address
	TransactOpts(ctx context.Context) *bind.TransactOpts
}

// Alerter shows a blocking message to the user.
type Alerter func(message string)

type Manager struct {
	required network.Network
	build    func() (Connector, error)
	alert    Alerter

	initMu    sync.Mutex
	connector Connector

	mu       sync.Mutex
	settled  ConnectionState
	inflight int
}

func NewManager(required network.Network, build func() (Connector, error), alert Alerter) *Manager {
	if alert == nil {
		alert = func(message string) {
			zap.L().Warn(message)
		}
	}

	return &Manager{required: required, build: build, alert: alert}
}

func (m *Manager) Required() network.Network {
	return m.required
}

// Initialize builds the connector the first time it succeeds. Later calls are no-ops.
func (m *Manager) Initialize() error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.connector != nil {
		return nil
	}

	connector, err := m.build()
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Wallet: failed to initialize")
		return err
	}
	m.connector = connector

	zap.L().With(zap.String("account", connector.Account().Hex())).Debug("Wallet: initialized")

	return nil
}

func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inflight > 0 && m.settled.Phase == Disconnected {
		return ConnectionState{Phase: Connecting}
	}

	return m.settled
}

func (m *Manager) Provider(ctx context.Context) (Handle, error) {
	return m.Acquire(ctx, false)
}

func (m *Manager) Signer(ctx context.Context) (Signer, error) {
	h, err := m.Acquire(ctx, true)
	if err != nil {
		return nil, err
	}

	return h.(Signer), nil
}

// Acquire connects through the wallet and checks the active network. On any failure the
// connection state is left as it was.
func (m *Manager) Acquire(ctx context.Context, needsSigner bool) (Handle, error) {
	if err := m.Initialize(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.inflight++
	m.mu.Unlock()

	h, err := m.acquire(ctx, needsSigner)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--

	if err != nil {
		zap.L().With(zap.Error(err), zap.Bool("signer", needsSigner)).Error("Wallet: acquire failed")
		return nil, err
	}
	m.settled = ConnectionState{Phase: Connected, Network: h.Network()}

	return h, nil
}

func (m *Manager) acquire(ctx context.Context, needsSigner bool) (Handle, error) {
	provider, err := m.connector.Connect(ctx)
	if err != nil {
		if !errors.Is(err, ErrConnectionRejected) && !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, err
	}

	chainId, err := provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	active := network.FromBig(chainId)
	if active.ChainId != m.required.ChainId {
		wrongNetwork := &WrongNetworkError{Got: active, Want: m.required}
		m.alert(wrongNetwork.Alert())
		return nil, wrongNetwork
	}

	h := &handle{network: active, backend: provider}
	if !needsSigner {
		return h, nil
	}

	opts, err := m.connector.Transactor(chainId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
	}

	return &signer{handle: h, opts: opts}, nil
}

type handle struct {
	network network.Network
	backend ethereum.Backend
}

func (h *handle) Network() network.Network {
	return h.network
}

func (h *handle) Backend() ethereum.Backend {
	return h.backend
}

type signer struct {
	*handle
	opts *bind.TransactOpts
}

func (s *signer) Address() common.Address {
	return s.opts.From
}

func (s *signer) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx

	return &opts
}
