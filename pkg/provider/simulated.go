package provider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

const simulatedGasLimit = 30000000

// SimulatedFunds initial balance of every funded account on the in-process chain
var SimulatedFunds = new(big.Int).Mul(big.NewInt(10000), big.NewInt(params.Ether))

// Simulated is an in-process chain that mines a block for every accepted
// transaction.
type Simulated struct {
	*backends.SimulatedBackend
}

func NewSimulated(funded ...common.Address) *Simulated {
	alloc := make(core.GenesisAlloc, len(funded))
	for _, addr := range funded {
		alloc[addr] = core.GenesisAccount{Balance: new(big.Int).Set(SimulatedFunds)}
	}
	return &Simulated{backends.NewSimulatedBackend(alloc, simulatedGasLimit)}
}

// SendTransaction adds tx to a new block. The simulated backend panics on
// transactions it cannot include, those are returned as errors instead.
func (s *Simulated) SendTransaction(ctx context.Context, tx *types.Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulated chain rejected tx %s: %v", tx.Hash().Hex(), r)
		}
	}()

	if err := s.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}
	s.Commit()
	return nil
}

func (s *Simulated) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(params.AllEthashProtocolChanges.ChainID), nil
}

func (s *Simulated) Close() {
	s.SimulatedBackend.Close()
}
