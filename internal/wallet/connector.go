package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/cryptodevs/whitelist-dapp/internal/ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Provider is a live connection to the node the wallet is pointed at.
type Provider interface {
	ethereum.Backend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Connector is the wallet itself: it hands out a provider and signs for exactly one account.
type Connector interface {
	Connect(ctx context.Context) (Provider, error)
	Account() common.Address
	Transactor(chainId *big.Int) (*bind.TransactOpts, error)
}

type Dialer func(ctx context.Context) (Provider, error)

type PassphrasePrompt func(account accounts.Account) (string, error)

// connection dials once and hands out the same provider afterwards.
type connection struct {
	dial Dialer

	mu       sync.Mutex
	provider Provider
}

func (c *connection) Connect(ctx context.Context) (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil {
		return c.provider, nil
	}

	p, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	c.provider = p

	return p, nil
}

type keyConnector struct {
	*connection
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewKeyConnector(hexKey string, dial Dialer) (Connector, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key", ErrConnectionRejected)
	}

	return &keyConnector{
		connection: &connection{dial: dial},
		key:        key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (c *keyConnector) Account() common.Address {
	return c.address
}

func (c *keyConnector) Transactor(chainId *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(c.key, chainId)
}

type keystoreConnector struct {
	*connection
	ks      *keystore.KeyStore
	account accounts.Account
}

// NewKeystoreConnector opens the keystore at dir and unlocks one account. An empty account picks
// the first one in the keystore, an empty passphrase asks prompt for it.
func NewKeystoreConnector(dir, account, passphrase string, prompt PassphrasePrompt, dial Dialer) (Connector, error) {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)

	acc, err := findAccount(ks, account)
	if err != nil {
		return nil, err
	}

	if passphrase == "" && prompt != nil {
		if passphrase, err = prompt(acc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
		}
	}

	if err := ks.Unlock(acc, passphrase); err != nil {
		zap.L().With(zap.Error(err), zap.String("account", acc.Address.Hex())).Warn("Wallet: unlock failed")
		return nil, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
	}

	zap.L().With(zap.String("account", acc.Address.Hex())).Info("Wallet: keystore account unlocked")

	return &keystoreConnector{
		connection: &connection{dial: dial},
		ks:         ks,
		account:    acc,
	}, nil
}

func findAccount(ks *keystore.KeyStore, account string) (accounts.Account, error) {
	if account == "" {
		if len(ks.Accounts()) == 0 {
			return accounts.Account{}, ErrNoAccount
		}
		return ks.Accounts()[0], nil
	}

	if !common.IsHexAddress(account) {
		return accounts.Account{}, fmt.Errorf("%w: invalid address %q", ErrNoAccount, account)
	}

	acc, err := ks.Find(accounts.Account{Address: common.HexToAddress(account)})
	if err != nil {
		return accounts.Account{}, fmt.Errorf("%w: %v", ErrNoAccount, err)
	}

	return acc, nil
}

func (c *keystoreConnector) Account() common.Address {
	return c.account.Address
}

func (c *keystoreConnector) Transactor(chainId *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyStoreTransactorWithChainID(c.ks, c.account, chainId)
}

// TerminalPrompt reads the passphrase from the controlling terminal without echo.
func TerminalPrompt(account accounts.Account) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal to ask for the passphrase of %s", account.Address.Hex())
	}

	_, _ = fmt.Fprintf(os.Stderr, "Passphrase for %s: ", account.Address.Hex())
	pass, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return string(pass), nil
}
