package main

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/export"
	"github.com/sells-group/statement-engine/internal/model"
	"github.com/sells-group/statement-engine/internal/render"
)

var (
	buildCIK     string
	buildView    string
	buildPeriods string
	buildDims    bool
	buildXLSX    string
	buildCSV     string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch company facts and assemble all statements for a filer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if buildCIK == "" {
			return eris.New("--cik is required")
		}
		applyRenderFlags()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := p.Build(ctx, buildCIK)
		if err != nil {
			return err
		}

		tables := sortedTables(res.Tables)
		for _, tbl := range tables {
			zap.L().Info("statement assembled",
				zap.String("role", string(tbl.Role)),
				zap.Int("rows", len(tbl.Rows)),
				zap.Int("periods", len(tbl.Periods)),
			)
		}

		if buildXLSX != "" {
			if err := export.WriteXLSX(buildXLSX, tables...); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", buildXLSX))
		}
		if buildCSV != "" {
			if err := writeCSVs(buildCSV, tables); err != nil {
				return err
			}
		}
		return nil
	},
}

// applyRenderFlags overlays command-line rendering flags onto the config.
func applyRenderFlags() {
	if buildView != "" {
		cfg.Render.View = buildView
	}
	if buildPeriods != "" {
		cfg.Render.Periods = buildPeriods
	}
	if buildDims {
		cfg.Render.IncludeDimensions = true
	}
}

// sortedTables orders tables by role for stable output.
func sortedTables(m map[model.StatementRole]*render.Table) []*render.Table {
	var out []*render.Table
	for _, tbl := range m {
		out = append(out, tbl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

func writeCSVs(dir string, tables []*render.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create csv dir %s", dir)
	}
	for _, tbl := range tables {
		path := dir + "/" + string(tbl.Role) + ".csv"
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		if err := export.WriteCSV(f, tbl, export.CSVOptions{}); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close %s", path)
		}
		zap.L().Info("csv written", zap.String("path", path))
	}
	return nil
}

func init() {
	buildCmd.Flags().StringVar(&buildCIK, "cik", "", "filer CIK (required)")
	buildCmd.Flags().StringVar(&buildView, "view", "", "sign view: raw, presentation, or normalized (default from config)")
	buildCmd.Flags().StringVar(&buildPeriods, "periods", "", "period filter: all, annual, or quarterly (default from config)")
	buildCmd.Flags().BoolVar(&buildDims, "include-dimensions", false, "include breakdown dimension rows")
	buildCmd.Flags().StringVar(&buildXLSX, "xlsx", "", "write all statements to an XLSX workbook at this path")
	buildCmd.Flags().StringVar(&buildCSV, "csv", "", "write one CSV per statement into this directory")
	rootCmd.AddCommand(buildCmd)
}
