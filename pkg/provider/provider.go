// Package provider connects the deployment flow to a chain, either a remote
// JSON-RPC node or an in-process simulated chain.
package provider

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/korthochain/domains/pkg/config"
)

// Backend is everything the deployment flow needs from a chain
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend

	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

var _ Backend = (*ethclient.Client)(nil)

// Network an open chain connection with the key that signs for it
type Network struct {
	Backend
	Key       *ecdsa.PrivateKey
	ChainId   *big.Int
	Simulated bool
}

// Dial opens the network described by cfg. With an empty URL an in-process
// chain is started and a funded key is generated for it unless one is
// configured.
func Dial(ctx context.Context, cfg *config.NetworkConfig) (*Network, error) {
	var key *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		k, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
		key = k
	}

	var (
		backend   Backend
		simulated bool
	)
	if cfg.URL == "" {
		if key == nil {
			k, err := crypto.GenerateKey()
			if err != nil {
				return nil, err
			}
			key = k
		}
		backend = NewSimulated(crypto.PubkeyToAddress(key.PublicKey))
		simulated = true
	} else {
		if key == nil {
			return nil, errors.New("network url set but no private key configured")
		}
		client, err := ethclient.DialContext(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
		}
		backend = client
	}

	if cfg.RateLimit > 0 {
		backend = NewThrottled(backend, cfg.RateLimit, cfg.Burst)
	}

	chainId := big.NewInt(cfg.ChainId)
	if cfg.ChainId == 0 {
		id, err := backend.ChainID(ctx)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("chain id: %w", err)
		}
		chainId = id
	}

	return &Network{Backend: backend, Key: key, ChainId: chainId, Simulated: simulated}, nil
}

// Account address of the signing key
func (n *Network) Account() common.Address {
	return crypto.PubkeyToAddress(n.Key.PublicKey)
}

// Signer returns transact options bound to the network's key and chain
func (n *Network) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(n.Key, n.ChainId)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}
