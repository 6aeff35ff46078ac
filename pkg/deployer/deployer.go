// Package deployer runs the name service deployment: deploy the Domains
// contract, register a name, set its record, then read back the owner and
// the contract balance. Steps run strictly in order and the first error
// ends the run.
package deployer

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gofrs/uuid"
	"github.com/korthochain/domains/pkg/artifacts"
	"github.com/korthochain/domains/pkg/contract"
	"github.com/korthochain/domains/pkg/domains"
	"github.com/korthochain/domains/pkg/journal"
	"github.com/korthochain/domains/pkg/provider"
	"github.com/korthochain/domains/pkg/units"
	"go.uber.org/zap"
)

const (
	StepDeploy     = "deploy"
	StepRegister   = "register"
	StepSetRecord  = "setRecord"
	StepGetAddress = "getAddress"
	StepBalance    = "balance"
)

type Config struct {
	Network  string
	ChainId  uint64
	Contract string
	TLD      string
	Domain   string
	Record   string
	Price    *big.Int
	// Timeout bounds the whole run, zero waits as long as the network needs
	Timeout time.Duration
}

// Result values produced by a successful run
type Result struct {
	RunID       string
	Contract    common.Address
	DeployTx    common.Hash
	RegisterTx  common.Hash
	SetRecordTx common.Hash
	Owner       common.Address
	Balance     *big.Int
}

type Deployer struct {
	backend provider.Backend
	signer  *bind.TransactOpts
	store   *artifacts.Store
	cfg     *Config

	out     io.Writer
	log     *zap.Logger
	journal *journal.Journal
}

type Option func(*Deployer)

// WithOutput sets where step results are printed
func WithOutput(w io.Writer) Option {
	return func(d *Deployer) { d.out = w }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Deployer) { d.log = l }
}

// WithJournal records every run in j, a nil journal disables recording
func WithJournal(j *journal.Journal) Option {
	return func(d *Deployer) { d.journal = j }
}

func New(backend provider.Backend, signer *bind.TransactOpts, store *artifacts.Store, cfg *Config, opts ...Option) *Deployer {
	d := &Deployer{
		backend: backend,
		signer:  signer,
		store:   store,
		cfg:     cfg,
		out:     ioutil.Discard,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes all steps once. A run always deploys a fresh contract, so
// it sends exactly three transactions when it succeeds.
func (d *Deployer) Run(ctx context.Context) (res *Result, err error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	run := &journal.Run{
		ID:        id.String(),
		Network:   d.cfg.Network,
		ChainId:   d.cfg.ChainId,
		Contract:  d.cfg.Contract,
		Status:    journal.StatusRunning,
		StartedAt: time.Now(),
	}
	log := d.log.With(zap.String("run", run.ID), zap.String("network", d.cfg.Network))
	log.Info("deployment started", zap.String("contract", d.cfg.Contract), zap.String("from", d.signer.From.Hex()))

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		d.finish(run, err, log)
	}()

	return d.run(ctx, run, log)
}

func (d *Deployer) run(ctx context.Context, run *journal.Run, log *zap.Logger) (*Result, error) {
	res := &Result{RunID: run.ID}
	fqdn := d.cfg.Domain + "." + d.cfg.TLD

	art, err := d.store.Load(d.cfg.Contract)
	if err != nil {
		return nil, err
	}

	dom, receipt, err := domains.Deploy(ctx, contract.NewFactory(art, d.backend), d.signer, d.cfg.TLD)
	if err != nil {
		return nil, err
	}
	res.Contract, res.DeployTx = dom.Address(), receipt.TxHash
	run.Address = dom.Address().Hex()
	d.step(run, log, StepDeploy, receipt, run.Address)
	fmt.Fprintln(d.out, "Contract deployed to:", dom.Address().Hex())

	receipt, err = dom.Register(ctx, d.signer, d.cfg.Domain, d.cfg.Price)
	if err != nil {
		return nil, err
	}
	res.RegisterTx = receipt.TxHash
	d.step(run, log, StepRegister, receipt, fqdn)
	fmt.Fprintf(d.out, "Minted domain %s\n", fqdn)

	receipt, err = dom.SetRecord(ctx, d.signer, d.cfg.Domain, d.cfg.Record)
	if err != nil {
		return nil, err
	}
	res.SetRecordTx = receipt.TxHash
	d.step(run, log, StepSetRecord, receipt, d.cfg.Record)
	fmt.Fprintf(d.out, "Set record for %s\n", fqdn)

	owner, err := dom.GetAddress(ctx, d.cfg.Domain)
	if err != nil {
		return nil, err
	}
	res.Owner = owner
	d.step(run, log, StepGetAddress, nil, owner.Hex())
	fmt.Fprintf(d.out, "Owner of domain %s: %s\n", d.cfg.Domain, owner.Hex())

	balance, err := dom.Balance(ctx)
	if err != nil {
		return nil, err
	}
	res.Balance = balance
	d.step(run, log, StepBalance, nil, balance.String())
	fmt.Fprintln(d.out, "Contract balance:", units.FormatEther(balance))

	return res, nil
}

// step records a completed step, receipt is nil for reads
func (d *Deployer) step(run *journal.Run, log *zap.Logger, name string, receipt *types.Receipt, output string) {
	s := journal.Step{Name: name, Output: output, At: time.Now()}
	fields := []zap.Field{zap.String("step", name), zap.String("output", output)}
	if receipt != nil {
		s.TxHash = receipt.TxHash.Hex()
		s.Block = receipt.BlockNumber.Uint64()
		fields = append(fields, zap.String("tx", s.TxHash), zap.Uint64("block", s.Block), zap.Uint64("gasUsed", receipt.GasUsed))
	}
	run.Steps = append(run.Steps, s)
	log.Info("step done", fields...)
}

func (d *Deployer) finish(run *journal.Run, err error, log *zap.Logger) {
	run.EndedAt = time.Now()
	if err != nil {
		run.Status = journal.StatusFailed
		run.Err = err.Error()
		log.Error("deployment failed", zap.Int("steps", len(run.Steps)), zap.Error(err))
	} else {
		run.Status = journal.StatusSucceeded
		log.Info("deployment finished", zap.Duration("elapsed", run.EndedAt.Sub(run.StartedAt)))
	}

	if d.journal == nil {
		return
	}
	if jerr := d.journal.Put(run); jerr != nil {
		log.Warn("journal write failed", zap.Error(jerr))
	}
}
