// Package export writes projected statement tables to XLSX and CSV.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/statement-engine/internal/render"
)

// WriteXLSX writes one statement table per sheet to an XLSX workbook at path.
func WriteXLSX(path string, tables ...*render.Table) error {
	if len(tables) == 0 {
		return eris.New("export: no tables to write")
	}

	f := xlsx.NewFile()
	for _, tbl := range tables {
		if err := addSheet(f, tbl); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addSheet(f *xlsx.File, tbl *render.Table) error {
	sheet, err := f.AddSheet(sheetName(tbl))
	if err != nil {
		return eris.Wrapf(err, "export: add sheet for %s", tbl.Role)
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Concept")
	header.AddCell().SetString("Label")
	for _, p := range tbl.Periods {
		header.AddCell().SetString(p.DisplayLabel())
	}

	for _, row := range tbl.Rows {
		r := sheet.AddRow()
		r.AddCell().SetString(row.Concept)
		r.AddCell().SetString(indentLabel(row.Label, row.Level))
		for _, cell := range row.Cells {
			c := r.AddCell()
			if cell != nil {
				c.SetFloat(*cell)
			}
		}
	}
	return nil
}

// sheetName returns an Excel-safe sheet name (31 char limit).
func sheetName(tbl *render.Table) string {
	name := string(tbl.Role)
	if tbl.View != "" {
		name += " (" + string(tbl.View) + ")"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func indentLabel(label string, level int) string {
	if level <= 0 {
		return label
	}
	return strings.Repeat("  ", level) + label
}
