package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"powerwait/results"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print benchmark runs recorded with bench --db, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.Errorf("history: --limit %d must be positive", limit)
			}
			if dbPath == "" {
				dbPath = a.cfg.Bench.DBPath
			}
			if dbPath == "" {
				return errors.New("history: no database, pass --db or set bench.db_path")
			}

			store, err := results.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				if err := writeJSON(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (default bench.db_path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}
