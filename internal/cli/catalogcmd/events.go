package catalogcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuihairu/tabletop/internal/catalog/events"
	"github.com/spf13/cobra"
)

// NewEvents returns the `tabletop events` command group.
func NewEvents() *cobra.Command {
	cmd := &cobra.Command{Use: "events", Short: "Inspect catalog change events"}
	cmd.AddCommand(newTail())
	cmd.AddCommand(newVerify())
	return cmd
}

func newTail() *cobra.Command {
	var (
		flags    configFlags
		group    string
		consumer string
		fromHead bool
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print change events from the configured broker as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := flags.load(false)
			if err != nil {
				return err
			}
			setupLogging(c)
			sc := events.SubscriberConfig{Group: group, Consumer: consumer, From: "$"}
			if fromHead {
				sc.From = "0"
			}
			sub, err := events.NewSubscriber(c.Events, sc)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			out := json.NewEncoder(cmd.OutOrStdout())
			return sub.Run(ctx, func(_ context.Context, ch events.Change) error {
				return out.Encode(ch)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&group, "group", "tabletop-tail", "consumer group")
	cmd.Flags().StringVar(&consumer, "consumer", "", "consumer name (default: generated)")
	cmd.Flags().BoolVar(&fromHead, "from-start", false, "read a new group from the start of the stream")
	return cmd
}

func newVerify() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <changes.log>",
		Short: "Check the hash chain of a file publisher log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := events.VerifyChain(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, chain intact\n", args[0], n)
			return nil
		},
	}
}
