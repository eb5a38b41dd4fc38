package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the model cache",
		Long: `Inspect or clear the on-disk cache of extracted class models.

The cache is keyed by file content and parser settings, so it never needs
clearing for correctness; 'cache clear' only reclaims space.`,
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

// openDiskCache opens the configured Badger store, or returns nil when
// the directory does not exist yet.
func openDiskCache() (*cache.Badger, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		return nil, "", fmt.Errorf("no cache directory configured (cache.dir)")
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, dir, nil
	}
	store, err := cache.NewBadger(dir)
	if err != nil {
		return nil, dir, err
	}
	return store, dir, nil
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of cached models",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, dir, err := openDiskCache()
			if err != nil {
				return err
			}
			count := 0
			if store != nil {
				defer store.Close()
				if count, err = store.Count(); err != nil {
					return fmt.Errorf("count cached models: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			printSection(out, "Model Cache")
			printKV(out, "Directory", dir)
			printKV(out, "Models", fmt.Sprint(count))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached model",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, dir, err := openDiskCache()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to clear in %s\n", dir)
				return nil
			}
			defer store.Close()

			n, err := store.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached models from %s\n", n, dir)
			return nil
		},
	}
}
