package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for jdg.

To load completions in your current shell session:
  source <(jdg completion bash)
  source <(jdg completion zsh)
  jdg completion fish | source`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			var err error
			switch args[0] {
			case "bash":
				err = root.GenBashCompletionV2(out, true)
			case "zsh":
				err = root.GenZshCompletion(out)
			case "fish":
				err = root.GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unsupported shell: %s (want bash, zsh or fish)", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to generate %s completion: %w", args[0], err)
			}
			return nil
		},
	}
}
