package catalogcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	svc "github.com/cuihairu/tabletop/internal/service/catalog"
	"github.com/cuihairu/tabletop/services/catalog/server"
	"github.com/spf13/cobra"
)

// NewAudit returns the `tabletop audit` command. It reports link
// inconsistencies in the configured store and, with --fix, repairs them.
func NewAudit() *cobra.Command {
	var (
		flags   configFlags
		fix     bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check (and optionally repair) base game / expansion links",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := flags.load(true)
			if err != nil {
				return err
			}
			setupLogging(c)
			catalog, closeStore, err := server.OpenCatalog(c)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")

			if !fix {
				violations, err := catalog.Audit(ctx)
				if err != nil {
					return err
				}
				if err := out.Encode(map[string]any{"violations": violations}); err != nil {
					return err
				}
				if len(violations) > 0 {
					return fmt.Errorf("%d link violations found", len(violations))
				}
				return nil
			}

			report, err := catalog.Reconcile(ctx)
			slog.Info("reconcile finished", "violations", len(report.Violations), "repairs", len(report.Repairs), "err", err)
			if encErr := out.Encode(reportView(report)); encErr != nil {
				return encErr
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&fix, "fix", false, "repair the violations found")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline")
	return cmd
}

type repairView struct {
	Pass     string `json:"pass"`
	RecordID string `json:"record_id"`
	Error    string `json:"error,omitempty"`
}

func reportView(r svc.Report) map[string]any {
	repairs := make([]repairView, 0, len(r.Repairs))
	for _, rep := range r.Repairs {
		v := repairView{Pass: rep.Pass, RecordID: rep.RecordID}
		if rep.Err != nil {
			v.Error = rep.Err.Error()
		}
		repairs = append(repairs, v)
	}
	return map[string]any{"violations": r.Violations, "repairs": repairs}
}
