package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/korthochain/domains/pkg/artifacts"
	"github.com/korthochain/domains/pkg/config"
	"github.com/korthochain/domains/pkg/deployer"
	"github.com/korthochain/domains/pkg/journal"
	"github.com/korthochain/domains/pkg/logger"
	"github.com/korthochain/domains/pkg/provider"
	"github.com/korthochain/domains/pkg/units"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdout, err)
		logger.Error("deploy", zap.Error(err))
		logger.Sync()
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "deploy",
		Short:         "Deploy the Domains name service and exercise it",
		Long:          "Deploys the Domains contract, registers a name, sets its record, then prints the owner and the contract balance.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cfgFile)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return deploy(cmd.Context(), cfg, stdout)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config/domainsConf.yaml)")
	cmd.AddCommand(newHistoryCmd(&cfgFile, stdout))
	return cmd
}

func setup(cfgFile string) (*config.CfgInfo, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("file", cfgFile),
		zap.String("network", cfg.NetworkCfg.Name),
		zap.String("artifacts", cfg.DeployCfg.Artifacts))
	return cfg, nil
}

func deploy(ctx context.Context, cfg *config.CfgInfo, stdout io.Writer) error {
	price, err := units.ParseEther(cfg.DeployCfg.Price)
	if err != nil {
		return err
	}

	network, err := provider.Dial(ctx, cfg.NetworkCfg)
	if err != nil {
		return err
	}
	defer network.Close()

	signer, err := network.Signer(ctx)
	if err != nil {
		return err
	}
	log := logger.With(zap.String("network", cfg.NetworkCfg.Name))
	log.Info("network ready",
		zap.Bool("simulated", network.Simulated),
		zap.String("chainId", network.ChainId.String()),
		zap.String("account", network.Account().Hex()))

	opts := []deployer.Option{deployer.WithOutput(stdout), deployer.WithLogger(logger.Logger)}
	if cfg.JournalCfg.Path != "" {
		j, err := journal.Open(cfg.JournalCfg.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer closeJournal(j)
		opts = append(opts, deployer.WithJournal(j))
	}

	d := deployer.New(network, signer, artifacts.NewStore(cfg.DeployCfg.Artifacts), &deployer.Config{
		Network:  cfg.NetworkCfg.Name,
		ChainId:  network.ChainId.Uint64(),
		Contract: cfg.DeployCfg.Contract,
		TLD:      cfg.DeployCfg.TLD,
		Domain:   cfg.DeployCfg.Domain,
		Record:   cfg.DeployCfg.Record,
		Price:    price,
		Timeout:  cfg.DeployCfg.Timeout,
	}, opts...)

	_, err = d.Run(ctx)
	return err
}

func closeJournal(j *journal.Journal) {
	if err := j.Close(); err != nil {
		logger.Warn("journal close failed", zap.Error(err))
	}
}
