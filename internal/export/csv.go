package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/statement-engine/internal/render"
)

// CSVOptions controls CSV formatting.
type CSVOptions struct {
	// Pretty formats numbers with thousands separators for direct human
	// consumption. Off by default so the output stays machine-parseable.
	Pretty bool
}

var prettyPrinter = message.NewPrinter(language.English)

// WriteCSV writes a statement table as CSV with one column per period.
func WriteCSV(w io.Writer, tbl *render.Table, opts CSVOptions) error {
	cw := csv.NewWriter(w)

	header := []string{"concept", "label"}
	for _, p := range tbl.Periods {
		header = append(header, p.DisplayLabel())
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, row := range tbl.Rows {
		rec := []string{row.Concept, indentLabel(row.Label, row.Level)}
		for _, cell := range row.Cells {
			rec = append(rec, formatCell(cell, opts.Pretty))
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", row.Concept)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func formatCell(v *float64, pretty bool) string {
	if v == nil {
		return ""
	}
	if pretty {
		return prettyPrinter.Sprintf("%.0f", *v)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
