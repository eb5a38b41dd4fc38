package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/filetree"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage registered projects",
		Long: `Manage the registry of known projects.

A project is a named root directory. Registered projects can be passed to
other commands with --project <id>.`,
	}

	cmd.AddCommand(newProjectAddCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectOpenCmd())
	cmd.AddCommand(newProjectRemoveCmd())

	return cmd
}

func openRegistry() (*config.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return config.NewRegistry(cfg.RegistryPath()), nil
}

func newProjectAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Register a project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			p, err := registry.Add(name, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered project %q (id %d) at %s\n", p.Name, p.ID, p.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (default: directory name)")

	return cmd
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			projects, err := registry.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintf(out, "No projects registered in %s\n", registry.Path())
				fmt.Fprintln(out, "Add one with 'jdg project add <path>'.")
				return nil
			}
			fmt.Fprintln(out, projectTable(projects))
			return nil
		},
	}
}

func projectTable(projects []config.Project) string {
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Path,
			p.LastOpenedTime().Local().Format(time.DateTime),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(enumeratorStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return valueStyle.Padding(0, 1)
		}).
		Headers("ID", "NAME", "PATH", "LAST OPENED").
		Rows(rows...).
		String()
}

func newProjectOpenCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a project and show its file tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := projectRoot(cfg, args[0])
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			printSection(out, p.Name)
			printKV(out, "Path", p.Path)
			printKV(out, "Opened", p.LastOpenedTime().Local().Format(time.DateTime))
			fmt.Fprintln(out)

			node, err := filetree.Build(p.Path, sess.treeOptions())
			if err != nil {
				return err
			}
			return printTree(out, node, search, false)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only list files whose name contains this term")

	return cmd
}

func newProjectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a project from the registry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			if err := registry.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %d\n", id)
			return nil
		},
	}
}
