package view

import (
	"context"
	"sync"
	"time"

	"github.com/cryptodevs/whitelist-dapp/internal/event"
	"github.com/cryptodevs/whitelist-dapp/internal/wallet"
	"github.com/cryptodevs/whitelist-dapp/internal/whitelist"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Wallet interface {
	Provider(ctx context.Context) (wallet.Handle, error)
	Signer(ctx context.Context) (wallet.Signer, error)
}

type Whitelist interface {
	IsWhitelisted(ctx context.Context, addr common.Address) (bool, error)
	NumAddressesWhitelisted(ctx context.Context) (uint64, error)
	AddAddressToWhitelist(opts *bind.TransactOpts) (whitelist.Pending, error)
}

// Binder attaches the whitelist contract to a wallet handle.
type Binder func(h wallet.Handle) (Whitelist, error)

type Joined struct {
	Address common.Address
	Tx      common.Hash
	Count   uint64
}

type Controller struct {
	wallet      Wallet
	bind        Binder
	events      *event.Manager
	joinTimeout time.Duration

	mu        sync.Mutex
	state     State
	refreshed chan struct{}
	// emitMu is taken before mu is released so listeners see states in reduce order.
	emitMu sync.Mutex

	wg sync.WaitGroup
}

type Option func(c *Controller)

// WithJoinTimeout bounds a join from signer acquisition to the count refresh.
func WithJoinTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.joinTimeout = d
	}
}

func NewController(w Wallet, bind Binder, events *event.Manager, opts ...Option) *Controller {
	c := &Controller{wallet: w, bind: bind, events: events}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Wait blocks until every background refresh and join has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// WaitRefresh blocks until the refreshes started by OnConnect have finished. A join in
// flight is not waited for.
func (c *Controller) WaitRefresh() {
	c.mu.Lock()
	done := c.refreshed
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) dispatch(a Action) State {
	c.mu.Lock()
	c.state = Reduce(c.state, a)
	s := c.state
	c.emit(s)

	return s
}

// emit is called with mu held and releases it.
func (c *Controller) emit(s State) {
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	c.events.EmitEvent(event.StateChangedEvent, s)
}

// dispatchIf applies a only when guard accepts the current state, in the same critical section.
func (c *Controller) dispatchIf(guard func(State) error, a Action) error {
	c.mu.Lock()
	if err := guard(c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = Reduce(c.state, a)
	c.emit(c.state)

	return nil
}

func (c *Controller) fail(op Op, kind FailureKind, err error) *Failure {
	f := classify(op, kind, err)
	zap.L().With(zap.Error(err), zap.String("op", string(op)), zap.String("kind", string(f.Kind))).Error("View: action failed")

	if op == OpJoin {
		c.dispatch(JoinFailed{f})
	} else {
		c.dispatch(Failed{f})
	}
	c.events.EmitEvent(event.FailureEvent, f)

	return f
}

// OnConnect connects the wallet and, once connected, refreshes membership and count in the
// background without waiting on either.
func (c *Controller) OnConnect(ctx context.Context) error {
	h, err := c.wallet.Provider(ctx)
	if err != nil {
		return c.fail(OpConnect, ConnectionRejected, err)
	}

	c.dispatch(Connected{})
	c.events.EmitEvent(event.WalletConnectedEvent, h.Network())

	done := make(chan struct{})
	c.mu.Lock()
	c.refreshed = done
	c.mu.Unlock()

	var refreshes sync.WaitGroup
	refreshes.Add(2)
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		defer refreshes.Done()
		_ = c.RefreshMembership(ctx)
	}()
	go func() {
		defer c.wg.Done()
		defer refreshes.Done()
		_ = c.RefreshCount(ctx)
	}()
	go func() {
		refreshes.Wait()
		close(done)
	}()

	return nil
}

func (c *Controller) RefreshMembership(ctx context.Context) error {
	signer, err := c.wallet.Signer(ctx)
	if err != nil {
		return c.fail(OpMembership, ConnectionRejected, err)
	}

	wl, err := c.bind(signer)
	if err != nil {
		return c.fail(OpMembership, ContractCallFailed, err)
	}

	member, err := wl.IsWhitelisted(ctx, signer.Address())
	if err != nil {
		return c.fail(OpMembership, ContractCallFailed, err)
	}

	zap.L().With(zap.String("address", signer.Address().Hex()), zap.Bool("member", member)).Debug("View: membership loaded")
	c.dispatch(MembershipLoaded{member})

	return nil
}

func (c *Controller) RefreshCount(ctx context.Context) error {
	count, err := c.fetchCount(ctx)
	if err != nil {
		return c.fail(OpCount, ContractCallFailed, err)
	}

	c.dispatch(CountLoaded{count})

	return nil
}

func (c *Controller) fetchCount(ctx context.Context) (uint64, error) {
	h, err := c.wallet.Provider(ctx)
	if err != nil {
		return 0, err
	}

	wl, err := c.bind(h)
	if err != nil {
		return 0, err
	}

	return wl.NumAddressesWhitelisted(ctx)
}

// OnJoin submits the join transaction and blocks until it is confirmed and the count refreshed.
// Only one join can be in flight.
func (c *Controller) OnJoin(ctx context.Context) error {
	if err := c.dispatchIf(CanJoin, JoinSubmitted{}); err != nil {
		return err
	}

	return c.join(ctx)
}

// StartJoin is OnJoin with everything after the guard running in the background.
func (c *Controller) StartJoin(ctx context.Context) error {
	if err := c.dispatchIf(CanJoin, JoinSubmitted{}); err != nil {
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.join(ctx)
	}()

	return nil
}

func (c *Controller) join(ctx context.Context) error {
	if c.joinTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.joinTimeout)
		defer cancel()
	}

	signer, err := c.wallet.Signer(ctx)
	if err != nil {
		return c.fail(OpJoin, ConnectionRejected, err)
	}

	wl, err := c.bind(signer)
	if err != nil {
		return c.fail(OpJoin, ContractCallFailed, err)
	}

	tx, err := wl.AddAddressToWhitelist(signer.TransactOpts(ctx))
	if err != nil {
		return c.fail(OpJoin, ContractCallFailed, err)
	}

	if _, err := tx.Wait(ctx); err != nil {
		return c.fail(OpJoin, TransactionFailed, err)
	}

	count, err := c.fetchCount(ctx)
	if err != nil {
		count = c.State().Count + 1
		zap.L().With(zap.Error(err), zap.Uint64("count", count)).Warn("View: count refresh after join failed")
	}

	c.dispatch(JoinConfirmed{count})
	c.events.EmitEvent(event.WhitelistJoinedEvent, Joined{Address: signer.Address(), Tx: tx.Hash(), Count: count})

	return nil
}

func (c *Controller) Dismiss() {
	c.dispatch(Dismissed{})
}
