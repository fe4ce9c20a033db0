package catalogcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfig returns the `tabletop config` command group.
func NewConfig() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Catalog config helpers"}
	cmd.AddCommand(newConfigTest())
	return cmd
}

func newConfigTest() *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Validate and print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, v, err := flags.load(true)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(v.AllSettings())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s OK (store=%s, events=%s)\n%s", flags.file, c.Store.Driver, c.Events.Driver, b)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
