package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/currency"
)

var (
	convertCIK   string
	convertValue float64
	convertYear  int
	convertRate  string
	convertFrom  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a reported value to or from USD using the filer's disclosed FX rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if convertCIK == "" {
			return eris.New("--cik is required")
		}
		rt := currency.RateType(convertRate)

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := p.Build(ctx, convertCIK)
		if err != nil {
			return err
		}
		conv := res.Converter

		var (
			out float64
			ok  bool
		)
		if convertFrom {
			out, ok, err = conv.FromUSD(convertValue, convertYear, rt)
		} else {
			out, ok, err = conv.ToUSD(convertValue, convertYear, rt)
		}
		if err != nil {
			return err
		}
		if !ok {
			return eris.Errorf("no %s rate disclosed for %d (home currency %s)", rt, convertYear, conv.Home())
		}

		zap.L().Info("converted",
			zap.String("home_currency", conv.Home()),
			zap.Float64("input", convertValue),
			zap.Float64("output", out),
			zap.Int("year", convertYear),
			zap.String("rate_type", string(rt)),
		)
		cmd.Printf("%.2f\n", out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertCIK, "cik", "", "filer CIK (required)")
	convertCmd.Flags().Float64Var(&convertValue, "value", 0, "value to convert")
	convertCmd.Flags().IntVar(&convertYear, "year", 0, "fiscal year of the value")
	convertCmd.Flags().StringVar(&convertRate, "rate", "average", "rate type: average (flows) or closing (balances)")
	convertCmd.Flags().BoolVar(&convertFrom, "from-usd", false, "convert from USD into the filer's home currency")
	rootCmd.AddCommand(convertCmd)
}
