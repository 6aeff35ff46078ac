// Package domains is a typed binding of the Domains name service contract
package domains

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/korthochain/domains/pkg/contract"
)

// ContractName name of the compiled artifact
const ContractName = "Domains"

// ABI is the input ABI used to bind the Domains contract
const ABI = `[
	{"inputs":[{"internalType":"string","name":"_tld","type":"string"}],"stateMutability":"payable","type":"constructor"},
	{"inputs":[{"internalType":"string","name":"name","type":"string"}],"name":"getAddress","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"name","type":"string"}],"name":"getRecord","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"string","name":"name","type":"string"}],"name":"price","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"pure","type":"function"},
	{"inputs":[{"internalType":"string","name":"name","type":"string"}],"name":"register","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"string","name":"name","type":"string"},{"internalType":"string","name":"record","type":"string"}],"name":"setRecord","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"tld","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

const (
	methodRegister   = "register"
	methodSetRecord  = "setRecord"
	methodGetAddress = "getAddress"
	methodGetRecord  = "getRecord"
	methodPrice      = "price"
)

var ErrNotDomains = errors.New("contract does not implement the Domains interface")

// Domains deployed name service
type Domains struct {
	*contract.Contract
}

// Bind wraps a deployed contract, its ABI must expose the name service methods
func Bind(c *contract.Contract) (*Domains, error) {
	methods := c.ABI().Methods
	for _, m := range []string{methodRegister, methodSetRecord, methodGetAddress} {
		if _, ok := methods[m]; !ok {
			return nil, fmt.Errorf("%w: %s has no %s", ErrNotDomains, c.Name(), m)
		}
	}
	return &Domains{Contract: c}, nil
}

// Deploy deploys a new Domains contract serving tld
func Deploy(ctx context.Context, f *contract.Factory, opts *bind.TransactOpts, tld string) (*Domains, *types.Receipt, error) {
	c, receipt, err := f.Deploy(ctx, opts, tld)
	if err != nil {
		return nil, nil, err
	}

	d, err := Bind(c)
	if err != nil {
		return nil, nil, err
	}
	return d, receipt, nil
}

// Register mints name to the sender, value is the attached payment
func (d *Domains) Register(ctx context.Context, opts *bind.TransactOpts, name string, value *big.Int) (*types.Receipt, error) {
	o := *opts
	o.Value = value
	return d.Transact(ctx, &o, methodRegister, name)
}

// SetRecord stores record for a name owned by the sender
func (d *Domains) SetRecord(ctx context.Context, opts *bind.TransactOpts, name, record string) (*types.Receipt, error) {
	o := *opts
	o.Value = nil
	return d.Transact(ctx, &o, methodSetRecord, name, record)
}

// GetAddress owner of name
func (d *Domains) GetAddress(ctx context.Context, name string) (common.Address, error) {
	out, err := d.Call(ctx, nil, methodGetAddress, name)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetRecord record stored for name
func (d *Domains) GetRecord(ctx context.Context, name string) (string, error) {
	out, err := d.Call(ctx, nil, methodGetRecord, name)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Price registration fee for name
func (d *Domains) Price(ctx context.Context, name string) (*big.Int, error) {
	out, err := d.Call(ctx, nil, methodPrice, name)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
