package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/lenny-lens/app"
	"github.com/upb/lenny-lens/services/ingest"
	"go.uber.org/zap"
)

var (
	ingestFile      string
	ingestEmbed     bool
	ingestBatchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load transcript chunks from a JSON Lines file",
	Long: `Reads one chunk record per line and inserts it into the chunks table.
Records without an embedding are skipped unless --embed is set, in which
case the embedding is requested from OpenAI. Use --file - to read stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if ingestEmbed {
			if err := cfg.RequireOpenAI(); err != nil {
				return err
			}
		}

		in, closeIn, err := openInput(ingestFile)
		if err != nil {
			return err
		}
		defer closeIn()

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize dependencies", zap.Error(err))
			return err
		}
		defer func() { _ = deps.Close(context.Background()) }()

		summary, err := deps.NewLoader().Load(ctx, in, ingest.Options{
			BatchSize: ingestBatchSize,
			Embed:     ingestEmbed,
		})
		if err != nil {
			logger.Error("ingest failed", zap.Error(err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "read %d, inserted %d, embedded %d, skipped %d\n",
			summary.Read, summary.Inserted, summary.Embedded, summary.Skipped)
		return nil
	},
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "JSON Lines file of chunk records (- for stdin)")
	ingestCmd.Flags().BoolVar(&ingestEmbed, "embed", false, "embed records that carry no embedding")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", ingest.DefaultBatchSize, "records inserted per transaction")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}
