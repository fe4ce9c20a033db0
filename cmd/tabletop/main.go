package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cuihairu/tabletop/internal/cli/catalogcmd"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "tabletop", Short: "Board game catalog CLI", SilenceUsage: true}

	root.AddCommand(catalogcmd.NewServe())
	root.AddCommand(catalogcmd.NewAudit())
	root.AddCommand(catalogcmd.NewEvents())
	root.AddCommand(catalogcmd.NewValidate())
	root.AddCommand(catalogcmd.NewConfig())

	comp := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
	root.AddCommand(comp)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
