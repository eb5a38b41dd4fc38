package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/jdg-tools/jdg/internal/filetree"
)

var (
	folderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	enumeratorStyle = lipgloss.NewStyle().Faint(true)
)

func newTreeCmd() *cobra.Command {
	var (
		search  string
		asJSON  bool
		project string
	)

	cmd := &cobra.Command{
		Use:   "tree [root]",
		Short: "Show the Java files under a directory",
		Long: `Show the Java files under a directory as a tree. Folders without any
Java file are left out, as are ignored directories.

With --search only the files whose name contains the term (ignoring case)
are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.Close()

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

			node, err := filetree.Build(root, sess.treeOptions())
			if err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), node, search, asJSON)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only list files whose name contains this term")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().StringVarP(&project, "project", "p", "", "use the root of a registered project")

	return cmd
}

// printTree writes node, or the files matching search, as text or JSON.
func printTree(out io.Writer, node *filetree.Node, search string, asJSON bool) error {
	if search != "" {
		matches := filetree.Search([]*filetree.Node{node}, search)
		if asJSON {
			if matches == nil {
				matches = []*filetree.Node{}
			}
			return writeJSON(out, matches)
		}
		for _, m := range matches {
			fmt.Fprintln(out, m.Path)
		}
		return nil
	}

	if asJSON {
		return writeJSON(out, node)
	}
	fmt.Fprintln(out, renderTree(node).String())
	files, folders := filetree.Count(node)
	fmt.Fprintf(out, "\n%d files, %d folders\n", files, folders)
	return nil
}

func renderTree(n *filetree.Node) *tree.Tree {
	t := tree.Root(n.Name).
		RootStyle(folderStyle).
		EnumeratorStyle(enumeratorStyle)
	for _, c := range n.Children {
		if c.Type == filetree.TypeFolder {
			t.Child(renderTree(c))
		} else {
			t.Child(c.Name)
		}
	}
	return t
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
