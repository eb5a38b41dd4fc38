package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdg-tools/jdg/internal/config"
)

// Style definitions for config view.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	valueStyle = lipgloss.NewStyle()
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `View or edit jdg configuration.

By default, displays the effective configuration (defaults, .jdg.yaml and
JDG_* environment variables combined). Use 'config edit' to change
.jdg.yaml interactively.`,
		RunE: runConfigView,
	}

	cmd.AddCommand(newConfigEditCmd())

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	// Title
	fmt.Fprintln(out, headerStyle.Render("jdg Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 17)))
	fmt.Fprintln(out)

	printSection(out, "Parser")
	printKV(out, "Member scope", cfg.Parser.MemberScope)
	fmt.Fprintln(out)

	printSection(out, "Diagram")
	printKV(out, "Vertical", boolYesNo(cfg.Diagram.Vertical))
	printKV(out, "Stereotypes", boolYesNo(cfg.Diagram.Stereotypes))
	printKV(out, "Workers", strconv.Itoa(cfg.Generate.Workers))
	fmt.Fprintln(out)

	printSection(out, "Model Cache")
	printKV(out, "Enabled", boolYesNo(cfg.Cache.Enabled))
	printKV(out, "Directory", cfg.Cache.Dir)
	printKV(out, "Memory entries", strconv.Itoa(cfg.Cache.MemoryEntries))
	fmt.Fprintln(out)

	printSection(out, "File Tree")
	printKV(out, "Use .gitignore", boolYesNo(cfg.Tree.GitIgnore))
	if len(cfg.Tree.Ignore) > 0 {
		printKV(out, "Ignore", strings.Join(cfg.Tree.Ignore, ", "))
	} else {
		printKV(out, "Ignore", "(none)")
	}
	fmt.Fprintln(out)

	printSection(out, "Projects")
	printKV(out, "Registry", cfg.RegistryPath())
	printKV(out, "Watch debounce", cfg.Watch.Debounce.String())
	fmt.Fprintln(out)

	return nil
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newConfigEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration interactively",
		Long:  `Edit .jdg.yaml using an interactive form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEdit(cmd)
		},
	}

	return cmd
}

func runConfigEdit(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	form, apply := configForm(cfg)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return fmt.Errorf("interactive config edit: %w", err)
	}
	apply()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path := configFilePath()
	if err := config.WriteConfig(cfg, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to %s\n", path)
	return nil
}

// configFilePath returns the file named by --config, or .jdg.yaml.
func configFilePath() string {
	if p := viper.GetString("config_file"); p != "" {
		return p
	}
	return config.DefaultConfigFile + "." + config.DefaultConfigType
}

// configForm builds a form that edits cfg in place. Text inputs are copied
// back by apply once the form completes.
func configForm(cfg *config.Config) (form *huh.Form, apply func()) {
	workers := strconv.Itoa(cfg.Generate.Workers)
	ignore := strings.Join(cfg.Tree.Ignore, ", ")

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Member scope").
				Description("Which fields and methods belong to a class").
				Options(
					huh.NewOption("Members of the parsed declaration", config.ScopeDeclaration),
					huh.NewOption("Every member in the file", config.ScopeFile),
				).
				Value(&cfg.Parser.MemberScope),
			huh.NewConfirm().
				Title("Left-to-right layout?").
				Value(&cfg.Diagram.Vertical),
			huh.NewConfirm().
				Title("Show stereotypes for abstract classes, enums and records?").
				Value(&cfg.Diagram.Stereotypes),
			huh.NewInput().
				Title("Parallel workers").
				Value(&workers).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		).Title("Diagram"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Cache extracted models on disk?").
				Value(&cfg.Cache.Enabled),
			huh.NewConfirm().
				Title("Honour .gitignore files?").
				Value(&cfg.Tree.GitIgnore),
			huh.NewInput().
				Title("Ignore patterns").
				Description("Comma-separated gitignore patterns").
				Value(&ignore),
		).Title("Files"),
	).WithTheme(huh.ThemeCharm())

	apply = func() {
		cfg.Generate.Workers, _ = strconv.Atoi(workers)
		cfg.Tree.Ignore = splitList(ignore)
	}
	return form, apply
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
