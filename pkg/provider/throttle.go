package provider

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"
)

// Throttled limits the request rate of every RPC made through a Backend,
// public endpoints reject bursts of receipt polling.
type Throttled struct {
	Backend
	limiter *rate.Limiter
}

func NewThrottled(b Backend, rps float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{Backend: b, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *Throttled) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.CodeAt(ctx, contract, blockNumber)
}

func (t *Throttled) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.CallContract(ctx, call, blockNumber)
}

func (t *Throttled) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.HeaderByNumber(ctx, number)
}

func (t *Throttled) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.PendingCodeAt(ctx, account)
}

func (t *Throttled) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return t.Backend.PendingNonceAt(ctx, account)
}

func (t *Throttled) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.SuggestGasPrice(ctx)
}

func (t *Throttled) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.SuggestGasTipCap(ctx)
}

func (t *Throttled) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return t.Backend.EstimateGas(ctx, call)
}

func (t *Throttled) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.Backend.SendTransaction(ctx, tx)
}

func (t *Throttled) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.TransactionReceipt(ctx, txHash)
}

func (t *Throttled) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.BalanceAt(ctx, account, blockNumber)
}

func (t *Throttled) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.FilterLogs(ctx, query)
}

func (t *Throttled) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.SubscribeFilterLogs(ctx, query, ch)
}

func (t *Throttled) ChainID(ctx context.Context) (*big.Int, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.Backend.ChainID(ctx)
}
