package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		force       bool
		interactive bool
		register    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .jdg.yaml config file",
		Long: `Write a .jdg.yaml configuration file with the default settings to the
current directory.

With --interactive the settings are chosen in a form first. With
--register the current directory is also added to the project registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			cfg := config.Default()
			out := cmd.OutOrStdout()

			if interactive {
				form, apply := configForm(cfg)
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Cancelled.")
						return nil
					}
					return fmt.Errorf("interactive init: %w", err)
				}
				apply()
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			fmt.Fprintf(out, "Created %s\n", path)

			if register {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				registry := config.NewRegistry(cfg.RegistryPath())
				p, err := registry.Add("", cwd)
				switch {
				case errors.Is(err, config.ErrProjectExists):
					fmt.Fprintf(out, "Project already registered in %s\n", registry.Path())
				case err != nil:
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to register project in %s: %v\n", registry.Path(), err)
				default:
					fmt.Fprintf(out, "Registered project %q (id %d) in %s\n", p.Name, p.ID, registry.Path())
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Edit .jdg.yaml or run 'jdg config edit'")
			fmt.Fprintln(out, "  2. Run 'jdg tree' to see the Java files jdg will pick up")
			fmt.Fprintln(out, "  3. Run 'jdg diagram <dir>' to render a class diagram")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose settings interactively")
	cmd.Flags().BoolVar(&register, "register", false, "add the current directory to the project registry")

	return cmd
}
