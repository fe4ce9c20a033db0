package catalogcmd

import (
	"log/slog"

	"github.com/cuihairu/tabletop/services/catalog/server"
	"github.com/spf13/cobra"
)

// NewServe returns the `tabletop serve` command.
func NewServe() *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board game catalog REST service",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := flags.load(false)
			if err != nil {
				return err
			}
			setupLogging(c)
			slog.Info("config loaded", "file", flags.file, "profile", flags.profile, "store", c.Store.Driver, "events", c.Events.Driver)
			return server.Run(c)
		},
	}
	flags.register(cmd)
	return cmd
}
