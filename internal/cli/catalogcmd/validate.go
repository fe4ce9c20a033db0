package catalogcmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuihairu/tabletop/internal/cli/common"
	"github.com/cuihairu/tabletop/internal/validation"
	"github.com/spf13/cobra"
)

// NewValidate returns the `tabletop validate` command, which checks board
// game JSON files against the record schema.
func NewValidate() *cobra.Command {
	var (
		watch      bool
		showSchema bool
	)
	cmd := &cobra.Command{
		Use:   "validate <file.json>...",
		Short: "Validate board game JSON files against the record schema",
		Args: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				_, err := cmd.OutOrStdout().Write(validation.BoardGameSchema())
				return err
			}
			failed := 0
			for _, path := range args {
				if !validateFile(cmd.OutOrStdout(), cmd.ErrOrStderr(), path) {
					failed++
				}
			}
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return common.WatchFiles(ctx, args, 200*time.Millisecond, func(path string) {
					validateFile(cmd.OutOrStdout(), cmd.ErrOrStderr(), path)
				})
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-validate files when they change")
	cmd.Flags().BoolVar(&showSchema, "schema", false, "print the record schema and exit")
	return cmd
}

func validateFile(out, errOut io.Writer, path string) bool {
	n, err := common.ValidateBoardGameFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", path, err)
		return false
	}
	fmt.Fprintf(out, "%s: %d records OK\n", path, n)
	return true
}
