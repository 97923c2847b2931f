package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// expiredPurger is implemented by stores that can drop only stale entries.
type expiredPurger interface {
	PurgeExpired(ctx context.Context) error
}

func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the strategy cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			stats, err := a.gateway.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Driver:  %s\nEntries: %d\nTTL:     %s\n", a.cfg.Cache.Driver, stats.Entries, a.gateway.TTL())
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if expiredOnly {
				p, ok := a.store.(expiredPurger)
				if !ok {
					return fmt.Errorf("cache driver %q expires entries on its own; use clear without --expired", a.cfg.Cache.Driver)
				}
				if err := p.PurgeExpired(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Expired cache entries cleared.")
				return nil
			}
			if err := a.gateway.Purge(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All cache entries cleared.")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
