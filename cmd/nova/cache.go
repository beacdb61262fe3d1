package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nova/internal/cli"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the data cache",
	}

	cmd.AddCommand(cacheStatusCmd())
	cmd.AddCommand(cacheClearCmd())
	cmd.AddCommand(cacheInvalidateCmd())
	cmd.AddCommand(cachePruneCmd())

	return cmd
}

func cacheStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cached entries and their freshness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			showContext, _ := cmd.Flags().GetBool("snapshot")
			return withApp(cmd, appOptions{store: true}, func(a *app) error {
				status := a.cache.Status()
				rows := make([]cli.CacheRow, 0, len(status))
				for key, s := range status {
					rows = append(rows, cli.CacheRow{
						Key:          key,
						FetchedAt:    s.FetchedAt,
						TTLRemaining: s.TTLRemaining,
						Expired:      s.Expired,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCacheStatus(rows))

				if showContext {
					fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Snapshot", a.assistant().Snapshot()))
				}
				return nil
			})
		},
	}

	cmd.Flags().Bool("snapshot", false, "Also render the fresh cached data")

	return cmd
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{store: true}, func(a *app) error {
				n := a.cache.Clear(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Cleared %d entries", n)))
				return nil
			})
		},
	}
}

func cacheInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate [key...]",
		Short: "Remove specific cached entries",
		Long: `Remove cached entries by key, for example "weather", "events:window"
or "todos". Run "nova cache status" to list keys.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, appOptions{store: true}, func(a *app) error {
				for _, key := range args {
					if a.cache.Invalidate(cmd.Context(), key) {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Invalidated " + key))
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No entry for " + key))
					}
				}
				return nil
			})
		},
	}
}

func cachePruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete persisted entries that expired long ago",
		Long: `Delete persisted entries whose expiry is older than --older-than.

Expired entries are normally kept so they can be served when a provider
is down; prune only removes ones too old to be useful.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			age, _ := cmd.Flags().GetDuration("older-than")
			if age < 0 {
				return fmt.Errorf("%w: --older-than must not be negative", errUsage)
			}
			return withApp(cmd, appOptions{store: true}, func(a *app) error {
				n, err := a.store.PruneCacheEntries(cmd.Context(), time.Now().Add(-age))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Pruned %d entries", n)))
				return nil
			})
		},
	}

	cmd.Flags().Duration("older-than", 7*24*time.Hour, "Minimum time since expiry")

	return cmd
}
