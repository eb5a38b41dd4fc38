package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/graph"
	"github.com/jdg-tools/jdg/internal/parser"
)

type diagramFlags struct {
	vertical    bool
	stereotypes bool
	out         string
	format      string
	project     string
	interactive bool
	workers     int
	noCache     bool
	memberScope string
}

func newDiagramCmd() *cobra.Command {
	var f diagramFlags

	cmd := &cobra.Command{
		Use:   "diagram [files or directories...]",
		Short: "Generate a Mermaid class diagram",
		Long: `Generate a Mermaid class diagram from Java source files.

Each file contributes the first class, interface, enum or record it
declares. Directories are expanded to the Java files under them. Classes
appear in the order the files are given, and relationships are inferred
only between classes of the same run.

The first file that cannot be parsed aborts the run.`,
		Example: `  jdg diagram src/main/java/com/example/User.java src/main/java/com/example/Order.java
  jdg diagram src/main/java --vertical -o classes.mmd
  jdg diagram --project 2 --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			sess, err := newSession(cfg, !f.noCache, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.Close()

			format, err := diagram.ParseFormat(f.format)
			if err != nil {
				return err
			}

			roots := args
			if f.project != "" {
				p, err := projectRoot(cfg, f.project)
				if err != nil {
					return err
				}
				if len(roots) == 0 {
					roots = []string{p.Path}
				}
			}
			if len(roots) == 0 && f.interactive {
				roots = []string{"."}
			}
			if len(roots) == 0 {
				return fmt.Errorf("no input files; pass files or directories, or use --project")
			}

			paths, err := sess.expandPaths(roots)
			if err != nil {
				return err
			}
			if f.interactive {
				if paths, err = selectFiles(paths); err != nil {
					return err
				}
				if len(paths) == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "No files selected.")
					return nil
				}
			}

			res, err := sess.gen.Generate(cmd.Context(), paths)
			if err != nil {
				return err
			}

			opts := diagram.Options{Vertical: cfg.Diagram.Vertical, Stereotypes: cfg.Diagram.Stereotypes}
			if f.out == "" || f.out == "-" {
				if err := diagram.Write(cmd.OutOrStdout(), format, res.Models, res.Relationships, opts); err != nil {
					return err
				}
			} else {
				if err := writeDiagramFile(f.out, format, res.Models, res.Relationships, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d classes and %d relationships to %s\n",
					len(res.Models), len(res.Relationships), f.out)
			}

			if verbose {
				printStats(cmd.ErrOrStderr(), res.Stats())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.vertical, "vertical", false, "lay the diagram out left to right (direction LR)")
	cmd.Flags().BoolVar(&f.stereotypes, "stereotypes", false, "mark abstract classes, enums and records")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the diagram to a file instead of stdout")
	cmd.Flags().StringVar(&f.format, "format", string(diagram.FormatMermaid), "output format: mermaid or json")
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "use the root of a registered project")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "pick the files to include interactively")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "files parsed concurrently (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the model cache")
	cmd.Flags().StringVar(&f.memberScope, "member-scope", "", "members to collect: declaration or file")

	return cmd
}

// apply overlays explicitly set flags on the loaded configuration.
func (f *diagramFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("vertical") {
		cfg.Diagram.Vertical = f.vertical
	}
	if flags.Changed("stereotypes") {
		cfg.Diagram.Stereotypes = f.stereotypes
	}
	if flags.Changed("workers") {
		cfg.Generate.Workers = f.workers
	}
	if flags.Changed("member-scope") {
		cfg.Parser.MemberScope = f.memberScope
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// selectFiles asks the user which of paths to include.
func selectFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	cwd, _ := os.Getwd()

	options := make([]huh.Option[string], len(paths))
	for i, p := range paths {
		label := p
		if rel, err := filepath.Rel(cwd, p); err == nil && !strings.HasPrefix(rel, "..") {
			label = rel
		}
		options[i] = huh.NewOption(label, p)
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Files to include").
				Description("Space to toggle, / to filter, enter to confirm").
				Options(options...).
				Filterable(true).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("file selection: %w", err)
	}

	// Keep the tree order rather than the selection order.
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	var ordered []string
	for _, p := range paths {
		if chosen[p] {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func writeDiagramFile(path string, format diagram.Format, models []*parser.ClassModel, rels []graph.Relationship, opts diagram.Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	var sb strings.Builder
	if err := diagram.Write(&sb, format, models, rels, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}

func printStats(out io.Writer, stats *graph.Stats) {
	fmt.Fprintln(out)
	printSection(out, "Diagram")
	printKV(out, "Classes", fmt.Sprint(stats.ClassCount))
	printKV(out, "Relationships", fmt.Sprint(stats.RelationshipCount))

	kinds := make([]string, 0, len(stats.ClassesByKind))
	for k := range stats.ClassesByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		printKV(out, "  "+k, fmt.Sprint(stats.ClassesByKind[parser.Kind(k)]))
	}

	rels := make([]string, 0, len(stats.RelationshipsByKind))
	for k := range stats.RelationshipsByKind {
		rels = append(rels, string(k))
	}
	sort.Strings(rels)
	for _, k := range rels {
		printKV(out, "  "+k, fmt.Sprint(stats.RelationshipsByKind[graph.RelationKind(k)]))
	}

	if len(stats.ExternalTargets) > 0 {
		printKV(out, "External", strings.Join(stats.ExternalTargets, ", "))
	}
}
