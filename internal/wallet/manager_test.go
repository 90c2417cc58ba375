package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cryptodevs/whitelist-dapp/internal/ethereum"
	"github.com/cryptodevs/whitelist-dapp/pkg/network"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var hardhatAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type markerKey struct{}

type fakeProvider struct {
	ethereum.Backend
	chainId int64
	err     error
}

func (p *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	if p.err != nil {
		return nil, p.err
	}
	return big.NewInt(p.chainId), nil
}

func dialer(p *fakeProvider, dials *int) Dialer {
	return func(context.Context) (Provider, error) {
		*dials++
		return p, nil
	}
}

func newTestManager(p *fakeProvider) (*Manager, *[]string, *int) {
	alerts := &[]string{}
	builds := new(int)
	dials := new(int)

	m := NewManager(network.Goerli, func() (Connector, error) {
		*builds++
		return NewKeyConnector(hardhatKey, dialer(p, dials))
	}, func(message string) {
		*alerts = append(*alerts, message)
	})

	return m, alerts, builds
}

func TestInitializeIsIdempotent(t *testing.T) {
	m, _, builds := newTestManager(&fakeProvider{chainId: 5})

	require.NoError(t, m.Initialize())
	require.NoError(t, m.Initialize())
	_, err := m.Provider(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, *builds)
}

func TestInitializeRetriesAfterFailure(t *testing.T) {
	calls := 0
	m := NewManager(network.Goerli, func() (Connector, error) {
		calls++
		if calls == 1 {
			return nil, ErrConnectionRejected
		}
		return NewKeyConnector(hardhatKey, dialer(&fakeProvider{chainId: 5}, new(int)))
	}, nil)

	_, err := m.Provider(context.Background())
	assert.ErrorIs(t, err, ErrConnectionRejected)
	assert.Equal(t, Disconnected, m.State().Phase)

	_, err = m.Provider(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAcquireProvider(t *testing.T) {
	m, alerts, _ := newTestManager(&fakeProvider{chainId: 5})

	assert.Equal(t, ConnectionState{Phase: Disconnected}, m.State())

	h, err := m.Acquire(context.Background(), false)
	require.NoError(t, err)

	_, isSigner := h.(Signer)
	assert.False(t, isSigner)
	assert.Equal(t, network.Goerli, h.Network())
	assert.Equal(t, ConnectionState{Phase: Connected, Network: network.Goerli}, m.State())
	assert.Empty(t, *alerts)
}

func TestAcquireSigner(t *testing.T) {
	m, _, _ := newTestManager(&fakeProvider{chainId: 5})

	s, err := m.Signer(context.Background())
	require.NoError(t, err)

	assert.Equal(t, hardhatAddress, s.Address())

	ctx := context.WithValue(context.Background(), markerKey{}, "marker")
	opts := s.TransactOpts(ctx)
	assert.Equal(t, hardhatAddress, opts.From)
	assert.Equal(t, ctx, opts.Context)
	assert.Nil(t, s.TransactOpts(context.Background()).Nonce)
}

func TestWrongNetworkIsRejectedForEveryAccess(t *testing.T) {
	for _, needsSigner := range []bool{false, true} {
		m, alerts, _ := newTestManager(&fakeProvider{chainId: 1})

		_, err := m.Acquire(context.Background(), needsSigner)

		var wrongNetwork *WrongNetworkError
		require.ErrorAs(t, err, &wrongNetwork)
		assert.Equal(t, network.Mainnet, wrongNetwork.Got)
		assert.Equal(t, network.Goerli, wrongNetwork.Want)
		assert.Equal(t, []string{"Change the network to Goerli"}, *alerts)
		assert.Equal(t, Disconnected, m.State().Phase)
	}
}

func TestFailedAcquireKeepsPreviousState(t *testing.T) {
	p := &fakeProvider{chainId: 5}
	m, _, _ := newTestManager(p)

	_, err := m.Provider(context.Background())
	require.NoError(t, err)

	p.chainId = 11155111
	_, err = m.Signer(context.Background())
	assert.Error(t, err)
	assert.Equal(t, ConnectionState{Phase: Connected, Network: network.Goerli}, m.State())

	p.err = errors.New("connection refused")
	_, err = m.Provider(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, Connected, m.State().Phase)
}

func TestProviderIsDialledOnce(t *testing.T) {
	dials := 0
	c, err := NewKeyConnector(hardhatKey, dialer(&fakeProvider{chainId: 5}, &dials))
	require.NoError(t, err)

	_, err = c.Connect(context.Background())
	require.NoError(t, err)
	_, err = c.Connect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, dials)
	assert.Equal(t, hardhatAddress, c.Account())
}

func TestDialFailureIsProviderUnavailable(t *testing.T) {
	c, err := NewKeyConnector(hardhatKey, func(context.Context) (Provider, error) {
		return nil, errors.New("dial tcp: refused")
	})
	require.NoError(t, err)

	_, err = c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestInvalidKeyIsRejected(t *testing.T) {
	_, err := NewKeyConnector("0xnothex", nil)
	assert.ErrorIs(t, err, ErrConnectionRejected)
}

func TestKeystoreConnector(t *testing.T) {
	dir := t.TempDir()
	acc, err := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP).NewAccount("secret")
	require.NoError(t, err)

	prompted := 0
	prompt := func(a accounts.Account) (string, error) {
		prompted++
		assert.Equal(t, acc.Address, a.Address)
		return "secret", nil
	}

	c, err := NewKeystoreConnector(dir, "", "", prompt, dialer(&fakeProvider{chainId: 5}, new(int)))
	require.NoError(t, err)
	assert.Equal(t, 1, prompted)
	assert.Equal(t, acc.Address, c.Account())

	opts, err := c.Transactor(big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, acc.Address, opts.From)

	_, err = NewKeystoreConnector(dir, acc.Address.Hex(), "wrong", nil, nil)
	assert.ErrorIs(t, err, ErrConnectionRejected)

	_, err = NewKeystoreConnector(t.TempDir(), "", "secret", nil, nil)
	assert.ErrorIs(t, err, ErrNoAccount)
}
