package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ledger/config"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/pkg/logger"
	"github.com/rustyeddy/ledger/replay"
	"github.com/rustyeddy/ledger/report"
	"github.com/rustyeddy/ledger/series"
)

func newReplayCmd() *cobra.Command {
	var (
		configPath   string
		fillsPath    string
		barsPath     string
		skipRejected bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fills CSV into the configured ledger",
		Long: `Replay fills into the ledger described by a config file, journal what
closes and print a summary of the closed positions.

The fills file has columns
  index,time,side,price,amount[,fee[,order_id[,correlation_id]]]
A blank index takes the next one; a blank price takes the bar close from --bars.

Examples:
  ledger replay -f ledger.yaml --fills fills.csv
  ledger replay -f ledger.yaml --fills fills.csv --bars bars.csv --skip-rejected`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(configPath)
			if err != nil {
				return err
			}
			log := cfg.Logger()
			logger.SetGlobalLogger(log)

			var opts replay.Options
			var extra []ledger.Option
			if barsPath != "" {
				bars, err := series.LoadCSV(barsPath, time.Time{}, time.Time{})
				if err != nil {
					return fmt.Errorf("load bars: %w", err)
				}
				opts.Series = bars
				extra = append(extra, ledger.WithSeries(bars))
			}

			rec, err := cfg.NewRecord(log, extra...)
			if err != nil {
				return fmt.Errorf("build ledger: %w", err)
			}

			j, err := cfg.OpenJournal()
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
				opts.Journal = j
			}

			feed, err := replay.OpenFillsFeed(fillsPath)
			if err != nil {
				return fmt.Errorf("open fills: %w", err)
			}
			defer feed.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			opts.SkipRejected = skipRejected
			opts.Log = log
			res, err := replay.Run(ctx, rec, feed, opts)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d fills, %d rejected, %d ignored\n", rec.Name(), res.Fills, res.Rejected, res.Ignored)
			if err := report.Summarize(res.Closed).Write(out); err != nil {
				return err
			}
			if live, ok := rec.(*ledger.LiveRecord); ok {
				if net, ok := live.NetOpenPosition(); ok {
					fmt.Fprintf(out, "open           %s %s @ %s (%d lots)\n", net.Side, net.Amount, net.AveragePrice, len(net.Lots))
				}
			} else if cur := rec.CurrentPosition(); cur != nil && cur.IsOpened() {
				fmt.Fprintf(out, "open           %s %s @ %s\n", cur.Entry().Side(), cur.Entry().Amount(), cur.Entry().Price())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "f", "", "path to ledger config file (required)")
	cmd.Flags().StringVar(&fillsPath, "fills", "", "CSV file of fills (required)")
	cmd.Flags().StringVar(&barsPath, "bars", "", "CSV file of bars (time,open,high,low,close[,volume]) for blank prices")
	cmd.Flags().BoolVar(&skipRejected, "skip-rejected", false, "log rejected fills and keep going")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("fills")
	return cmd
}
