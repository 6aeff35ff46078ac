package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/korthochain/domains/pkg/journal"
	"github.com/korthochain/domains/pkg/logger"
	"github.com/spf13/cobra"
)

func newHistoryCmd(cfgFile *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded deployment runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*cfgFile)
			if err != nil {
				return err
			}
			if cfg.JournalCfg.Path == "" {
				return errors.New("journal.path is not configured")
			}

			j, err := journal.Open(cfg.JournalCfg.Path)
			if err != nil {
				return err
			}
			defer closeJournal(j)

			runs, err := j.List()
			if err != nil {
				return err
			}
			logger.SugarLogger.Infof("listed %d runs from %s", len(runs), cfg.JournalCfg.Path)
			return printRuns(stdout, runs)
		},
	}
}

func printRuns(w io.Writer, runs []*journal.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN\tNETWORK\tSTATUS\tSTEPS\tCONTRACT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.UTC().Format(time.RFC3339), r.ID, r.Network, r.Status, len(r.Steps), r.Address)
	}
	return tw.Flush()
}
