package commands

import (
	"fmt"
	"os"

	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/summary"

	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the current complaint list as a PNG table",
		Long: `Fetch every complaint from the API once and render it as a PNG table, in
the order the API returns them. Dates use DEFAULT_LOCALE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			ctx := cmd.Context()

			complaints, err := a.client.ListComplaints(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch complaints: %w", err)
			}

			png, err := summary.RenderTable(complaints, summary.Options{
				FormatDate: func(createdAt string) string { return a.dates.Format(createdAt, "") },
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			a.logger.Info(ctx, "summary written", logging.Fields{"file": out, "complaints": len(complaints)})
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d complaints to %s\n", len(complaints), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "complaints-summary.png", "output PNG file")
	return cmd
}
