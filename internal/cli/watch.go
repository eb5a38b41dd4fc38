package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/filetree"
	"github.com/jdg-tools/jdg/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		outPath  string
		format   string
		project  string
		vertical bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Regenerate a diagram whenever Java sources change",
		Long: `Watch a directory and rewrite the class diagram of every Java file under
it whenever one of them is created, changed, renamed or deleted.

Changes are collected until the tree has been quiet for the configured
debounce window (watch.debounce), then the diagram is regenerated once.
A failing file is reported and the previous diagram is kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("vertical") {
				cfg.Diagram.Vertical = vertical
			}
			f, err := diagram.ParseFormat(format)
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if project != "" {
				p, err := projectRoot(cfg, project)
				if err != nil {
					return err
				}
				root = p.Path
			}

			sess, err := newSession(cfg, !noCache, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.Close()

			w, err := watcher.NewWatcher(watcher.WatcherConfig{
				Paths:           []string{root},
				ExcludePatterns: cfg.Tree.Ignore,
				Extensions:      sess.parsers.SupportedExtensions(),
				Debounce:        cfg.Watch.Debounce,
				GitIgnore:       cfg.Tree.GitIgnore,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Close()

			// Set up signal handling.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			batches, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			opts := diagram.Options{Vertical: cfg.Diagram.Vertical, Stereotypes: cfg.Diagram.Stereotypes}
			regen := func(ctx context.Context) error {
				node, err := filetree.Build(root, sess.treeOptions())
				if err != nil {
					return err
				}
				res, err := sess.gen.Generate(ctx, filetree.Files(node))
				if err != nil {
					return err
				}
				if err := writeDiagramFile(outPath, f, res.Models, res.Relationships, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] Wrote %d classes and %d relationships to %s\n",
					time.Now().Format(time.TimeOnly), len(res.Models), len(res.Relationships), outPath)
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, writing %s (Ctrl+C to stop)\n", root, outPath)
			return watchLoop(ctx, cmd.ErrOrStderr(), batches, regen)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "diagram.mmd", "file the diagram is written to")
	cmd.Flags().StringVar(&format, "format", string(diagram.FormatMermaid), "output format: mermaid or json")
	cmd.Flags().StringVarP(&project, "project", "p", "", "watch the root of a registered project")
	cmd.Flags().BoolVar(&vertical, "vertical", false, "lay the diagram out left to right (direction LR)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write the model cache")

	return cmd
}

// watchLoop runs regen once up front and again after every batch until
// batches is closed. Failures are reported to errOut and do not stop the
// loop.
func watchLoop(ctx context.Context, errOut io.Writer, batches <-chan watcher.Batch, regen func(context.Context) error) error {
	if err := regen(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	for batch := range batches {
		if verbose {
			for _, e := range batch.Events {
				fmt.Fprintf(errOut, "  %s %s\n", e.Op, e.Path)
			}
		}
		if err := regen(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}
	return nil
}
