package smokecheck

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkwellhq/inkwell/internal/tools/common"
	"github.com/inkwellhq/inkwell/internal/tools/ui"
)

type options struct {
	baseURL string
	ci      bool
}

// NewCommand builds the smokecheck subcommand: it runs the full session
// lifecycle against a live instance.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "smokecheck",
		Short: "Exercise the session lifecycle against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.ci {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				details, runErr := run(ctx, opts.baseURL)
				common.PrintCIResult(runErr == nil, "smokecheck", details, runErr)
				err = runErr
			} else {
				_, err = ui.Run("smokecheck "+opts.baseURL, func(ctx context.Context) ([]string, error) {
					return run(ctx, opts.baseURL)
				})
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "server base URL")
	cmd.Flags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	return cmd
}
