// Package contract deploys compiled artifacts and drives the deployed
// instances: every state-changing call returns only once it is mined.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/korthochain/domains/pkg/artifacts"
	"github.com/korthochain/domains/pkg/provider"
)

// ErrReverted a transaction was mined with a failed status
var ErrReverted = errors.New("transaction reverted")

// Factory deploys instances of one compiled contract
type Factory struct {
	art     *artifacts.Artifact
	backend provider.Backend
}

func NewFactory(art *artifacts.Artifact, backend provider.Backend) *Factory {
	return &Factory{art: art, backend: backend}
}

// Name contract name of the artifact
func (f *Factory) Name() string {
	return f.art.ContractName
}

// Deploy submits the creation transaction with constructor args and waits
// until code is present at the new address.
func (f *Factory) Deploy(ctx context.Context, opts *bind.TransactOpts, args ...interface{}) (*Contract, *types.Receipt, error) {
	o := withContext(ctx, opts)

	addr, tx, bound, err := bind.DeployContract(o, f.art.ABI, f.art.Bytecode, f.backend, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("deploy %s: %w", f.art.ContractName, err)
	}

	if _, err := bind.WaitDeployed(ctx, f.backend, tx); err != nil {
		return nil, nil, fmt.Errorf("deploy %s: %w", f.art.ContractName, err)
	}
	receipt, err := f.backend.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, nil, err
	}

	return &Contract{
		name:    f.art.ContractName,
		address: addr,
		abi:     f.art.ABI,
		bound:   bound,
		backend: f.backend,
	}, receipt, nil
}

// Contract handle of a deployed instance
type Contract struct {
	name    string
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	backend provider.Backend
}

// At binds an already deployed instance
func At(art *artifacts.Artifact, address common.Address, backend provider.Backend) *Contract {
	return &Contract{
		name:    art.ContractName,
		address: address,
		abi:     art.ABI,
		bound:   bind.NewBoundContract(address, art.ABI, backend, backend, backend),
		backend: backend,
	}
}

func (c *Contract) Name() string {
	return c.name
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Transact invokes a state-changing method and waits for it to be mined
func (c *Contract) Transact(ctx context.Context, opts *bind.TransactOpts, method string, args ...interface{}) (*types.Receipt, error) {
	tx, err := c.bound.Transact(withContext(ctx, opts), method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s.%s: %w (tx %s)", c.name, method, ErrReverted, tx.Hash().Hex())
	}
	return receipt, nil
}

// Call invokes a read-only method against the latest state
func (c *Contract) Call(ctx context.Context, opts *bind.CallOpts, method string, args ...interface{}) ([]interface{}, error) {
	o := bind.CallOpts{}
	if opts != nil {
		o = *opts
	}
	o.Context = ctx

	var out []interface{}
	if err := c.bound.Call(&o, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}
	return out, nil
}

// Balance current balance of the contract account
func (c *Contract) Balance(ctx context.Context) (*big.Int, error) {
	return c.backend.BalanceAt(ctx, c.address, nil)
}

func withContext(ctx context.Context, opts *bind.TransactOpts) *bind.TransactOpts {
	o := *opts
	o.Context = ctx
	return &o
}
