package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"listings-pipeline/models"
	"listings-pipeline/storage"
)

var (
	processBucket *string
	processKey    *string
	eventPath     *string
)

func init() {
	processBucket = processCmd.Flags().String("bucket", "", "The bucket holding the archive. Defaults to S3_BUCKET.")
	processKey = processCmd.Flags().String("key", "", "The archive key. Defaults to today's archive.")
	eventPath = dispatchCmd.Flags().String("event", "", "Path to a JSON trigger payload, or - for stdin. Empty means a plain download.")

	rootCmd.AddCommand(archiveCmd, processCmd, dispatchCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Downloads the search result pages and stores them as one dated archive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPipeline(cmd, func(p *pipeline) (models.Result, error) {
			return p.archiver.Run(cmd.Context())
		})
	},
}

var processCmd = &cobra.Command{
	Use:   "process [--bucket <bucket>] [--key <YYYY-MM-DD.html>]",
	Short: "Extracts listings from an archive and writes the CSV table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket := *processBucket
		if bucket == "" {
			bucket = cfg.ArchiveBucket
		}
		key := *processKey
		if key == "" {
			key = storage.ArchiveKey(time.Now())
		}
		return withPipeline(cmd, func(p *pipeline) (models.Result, error) {
			return p.processor.Run(cmd.Context(), bucket, key)
		})
	},
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch [--event <path|->]",
	Short: "Routes a trigger payload to the download or the parse stage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readEvent(cmd.InOrStdin(), *eventPath)
		if err != nil {
			return err
		}
		return withPipeline(cmd, func(p *pipeline) (models.Result, error) {
			return p.dispatcher.Handle(cmd.Context(), payload)
		})
	},
}

func readEvent(stdin io.Reader, path string) (json.RawMessage, error) {
	switch path {
	case "":
		return json.RawMessage(`{}`), nil
	case "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return raw, nil
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read event: %w", err)
		}
		return raw, nil
	}
}
