package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/config"
	"github.com/sells-group/statement-engine/internal/dimension"
	"github.com/sells-group/statement-engine/internal/pipeline"
	"github.com/sells-group/statement-engine/internal/store"
	"github.com/sells-group/statement-engine/pkg/edgarfacts"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "statement-engine",
	Short: "XBRL fact normalization and statement assembly",
	Long:  "Fetches SEC company facts, classifies dimensions, assembles presentation-ordered statements, and renders them under raw, presentation, or normalized sign conventions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	tables := dimension.DefaultTables()
	if cfg.Dimension.TablesPath != "" {
		tables, err = dimension.LoadTables(cfg.Dimension.TablesPath)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	edgar := edgarfacts.NewClient(edgarfacts.Options{
		BaseURL:    cfg.EDGAR.BaseURL,
		UserAgent:  cfg.EDGAR.UserAgent,
		Timeout:    time.Duration(cfg.EDGAR.TimeoutSecs) * time.Second,
		MaxRetries: cfg.EDGAR.MaxRetries,
	})

	return pipeline.New(cfg, st, edgar, tables), st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
