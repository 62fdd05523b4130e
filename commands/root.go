package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"listings-pipeline/config"
	"listings-pipeline/models"
	"listings-pipeline/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:           "listings-pipeline",
	Short:         "listings-pipeline archives Mitula search pages and turns them into CSV tables.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the CLI with the loaded configuration.
func ExecuteContext(ctx context.Context, c *config.Config, l *utils.Logger) {
	cfg, logger = c, l
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withPipeline builds the pipeline for one command invocation and tears it
// down afterwards.
func withPipeline(cmd *cobra.Command, run func(p *pipeline) (models.Result, error)) error {
	p, err := newPipeline(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := run(p)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}

func printResult(w io.Writer, res models.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
