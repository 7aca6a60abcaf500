package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type pruner interface {
	Prune() (int, error)
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lookup cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			store, closeCache, err := openCache(logger)
			if err != nil {
				return err
			}
			defer closeCache()
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cache %s\n", viper.GetString(CfgKeyCachePath))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the on-disk cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			store, closeCache, err := openCache(logger)
			if err != nil {
				return err
			}
			defer closeCache()
			p, ok := store.(pruner)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune")
				return nil
			}
			n, err := p.Prune()
			if err != nil {
				return fmt.Errorf("failed to prune cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries\n", n)
			return nil
		},
	})
	return cmd
}
