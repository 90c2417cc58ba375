package whitelist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cryptodevs/whitelist-dapp/internal/ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	ErrInvalidAddress    = errors.New("invalid contract address")
	ErrTransactionFailed = errors.New("transaction failed")
)

var parsedAbi abi.ABI

func init() {
	var err error
	if parsedAbi, err = abi.JSON(strings.NewReader(Abi)); err != nil {
		panic(err)
	}
}

// Pending is a submitted transaction that has not been confirmed yet.
type Pending interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

type Contract struct {
	address  common.Address
	contract *bind.BoundContract
	backend  bind.DeployBackend
}

func ParseAddress(addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	return common.HexToAddress(addr), nil
}

func New(address common.Address, backend ethereum.Backend) *Contract {
	return &Contract{
		address:  address,
		contract: bind.NewBoundContract(address, parsedAbi, backend, backend, backend),
		backend:  backend,
	}
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) IsWhitelisted(ctx context.Context, addr common.Address) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodWhitelisted, addr); err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Contract) NumAddressesWhitelisted(ctx context.Context) (uint64, error) {
	return c.callUint8(ctx, methodNumWhitelisted)
}

func (c *Contract) MaxWhitelistedAddresses(ctx context.Context) (uint64, error) {
	return c.callUint8(ctx, methodMaxWhitelisted)
}

func (c *Contract) callUint8(ctx context.Context, method string) (uint64, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method); err != nil {
		return 0, err
	}

	return uint64(*abi.ConvertType(out[0], new(uint8)).(*uint8)), nil
}

func (c *Contract) AddAddressToWhitelist(opts *bind.TransactOpts) (Pending, error) {
	tx, err := c.contract.Transact(opts, methodJoin)
	if err != nil {
		return nil, err
	}

	zap.L().With(
		zap.String("contract", c.address.Hex()),
		zap.String("from", opts.From.Hex()),
		zap.String("tx", tx.Hash().Hex()),
	).Info("Whitelist: join submitted")

	return &Transaction{tx, c.backend}, nil
}

type Transaction struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

func NewTransaction(tx *types.Transaction, backend bind.DeployBackend) *Transaction {
	return &Transaction{tx, backend}
}

func (t *Transaction) Hash() common.Hash {
	return t.tx.Hash()
}

// Wait blocks until the transaction is mined or ctx is done. A mined but reverted transaction
// returns its receipt together with ErrTransactionFailed.
func (t *Transaction) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, t.tx)
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s reverted in block %s", ErrTransactionFailed, t.Hash().Hex(), receipt.BlockNumber)
	}

	zap.L().With(zap.String("tx", t.Hash().Hex()), zap.Uint64("gasUsed", receipt.GasUsed)).Info("Whitelist: join confirmed")

	return receipt, nil
}
