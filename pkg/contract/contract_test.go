package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/korthochain/domains/pkg/contract"
	"github.com/korthochain/domains/pkg/domains/domainstest"
	"github.com/korthochain/domains/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T) (*provider.Simulated, *bind.TransactOpts) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sim := provider.NewSimulated(crypto.PubkeyToAddress(key.PublicKey))
	t.Cleanup(sim.Close)

	opts, err := bind.NewKeyedTransactorWithChainID(key, params.AllEthashProtocolChanges.ChainID)
	require.NoError(t, err)
	return sim, opts
}

func TestFactoryDeploy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sim, opts := newChain(t)

	f := contract.NewFactory(domainstest.Artifact(), sim)
	assert.Equal("Domains", f.Name())

	c, receipt, err := f.Deploy(ctx, opts, "sexy")
	require.NoError(t, err)

	assert.Equal(types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(c.Address(), receipt.ContractAddress)
	assert.NotEqual(common.Address{}, c.Address())

	code, err := sim.CodeAt(ctx, c.Address(), nil)
	require.NoError(t, err)
	assert.NotEmpty(code)
}

func TestContractTransactAndCall(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sim, opts := newChain(t)

	c, _, err := contract.NewFactory(domainstest.Artifact(), sim).Deploy(ctx, opts, "sexy")
	require.NoError(t, err)

	paid := *opts
	paid.Value = domainstest.Price
	callerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	paid.Context = callerCtx

	receipt, err := c.Transact(ctx, &paid, "register", "steak")
	require.NoError(t, err)
	assert.Equal(types.ReceiptStatusSuccessful, receipt.Status)
	// the caller's options are not mutated
	assert.True(paid.Context == callerCtx)
	assert.Equal(domainstest.Price, paid.Value)

	out, err := c.Call(ctx, nil, "getAddress", "steak")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(opts.From, out[0])

	bal, err := c.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(domainstest.Price, bal)

	bound := contract.At(domainstest.Artifact(), c.Address(), sim)
	out, err = bound.Call(ctx, &bind.CallOpts{From: opts.From}, "getAddress", "steak")
	require.NoError(t, err)
	assert.Equal(opts.From, out[0])
}

func TestContractTransactReverted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sim, opts := newChain(t)

	c, _, err := contract.NewFactory(domainstest.Artifact(), sim).Deploy(ctx, opts, "sexy")
	require.NoError(t, err)

	// estimation catches the revert before anything is sent
	_, err = c.Transact(ctx, opts, "register", "steak")
	assert.Error(err)
	assert.False(errors.Is(err, contract.ErrReverted))

	// with a fixed gas limit the transaction is mined and fails
	fixed := *opts
	fixed.GasLimit = 100000
	receipt, err := c.Transact(ctx, &fixed, "register", "steak")
	assert.True(errors.Is(err, contract.ErrReverted))
	require.NotNil(t, receipt)
	assert.Equal(types.ReceiptStatusFailed, receipt.Status)

	bal, err := c.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(0, bal.Cmp(new(big.Int)))
}

func TestContractUnknownMethod(t *testing.T) {
	ctx := context.Background()
	sim, opts := newChain(t)

	c, _, err := contract.NewFactory(domainstest.Artifact(), sim).Deploy(ctx, opts, "sexy")
	require.NoError(t, err)

	_, err = c.Call(ctx, nil, "ownerOf", "steak")
	assert.Error(t, err)
	_, err = c.Transact(ctx, opts, "burn", "steak")
	assert.Error(t, err)
}
