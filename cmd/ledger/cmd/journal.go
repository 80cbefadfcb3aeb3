package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ledger/journal"
)

func newJournalCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the position journal",
		Long: `Query and display closed positions from a SQLite journal.

Examples:
  ledger journal position <position-id>
  ledger journal list <record>
  ledger journal day 2026-01-24`,
	}
	cmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "./ledger.db", "path to SQLite journal DB")

	open := func() (*journal.SQLite, error) {
		j, err := journal.NewSQLite(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	}

	positionCmd := &cobra.Command{
		Use:   "position <position-id>",
		Short: "Show one closed position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.GetPosition(args[0])
			if err != nil {
				return fmt.Errorf("get position: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionOrg(rec))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <record>",
		Short: "List the closed positions of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListPositions(args[0])
			if err != nil {
				return fmt.Errorf("query positions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionsOrg(recs))
			return nil
		},
	}

	dayCmd := &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "List positions closed on a day (local time)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := dayBounds(time.Local, args[0])
			if err != nil {
				return fmt.Errorf("date: %w", err)
			}

			j, err := open()
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListPositionsClosedBetween(start, end)
			if err != nil {
				return fmt.Errorf("query positions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPositionsOrg(recs))
			return nil
		},
	}

	cmd.AddCommand(positionCmd, listCmd, dayCmd)
	return cmd
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}
