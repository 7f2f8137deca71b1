package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/model"
)

var (
	stitchCIK        string
	stitchRole       string
	stitchMaxPeriods int
)

var stitchCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Build a multi-period statement spanning a filer's filings",
	Long:  "Assembles the requested role from the filer's full facts history and merges it into one continuous table, preferring the newest filing's value where periods overlap.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if stitchCIK == "" {
			return eris.New("--cik is required")
		}
		role, err := model.ParseRole(stitchRole)
		if err != nil {
			return err
		}
		if stitchMaxPeriods > 0 {
			cfg.Render.MaxStitchPeriods = stitchMaxPeriods
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := p.Build(ctx, stitchCIK)
		if err != nil {
			return err
		}

		stmt, ok := res.Statements[role]
		if !ok {
			return eris.Errorf("no %s facts for CIK %s", role, stitchCIK)
		}

		tbl, err := p.StitchAndSave(ctx, stitchCIK, []*model.Statement{stmt}, role)
		if err != nil {
			return err
		}

		zap.L().Info("stitched statement saved",
			zap.String("cik", stitchCIK),
			zap.String("role", string(role)),
			zap.Int("rows", len(tbl.Rows)),
			zap.Int("periods", len(tbl.Periods)),
		)
		return nil
	},
}

func init() {
	stitchCmd.Flags().StringVar(&stitchCIK, "cik", "", "filer CIK (required)")
	stitchCmd.Flags().StringVar(&stitchRole, "role", "BalanceSheet", "statement role to stitch")
	stitchCmd.Flags().IntVar(&stitchMaxPeriods, "max-periods", 0, "cap on stitched period columns (0 = unbounded)")
	rootCmd.AddCommand(stitchCmd)
}
