// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/leadify/pkg/types"
)

// SheetName is the worksheet that holds the leads.
const SheetName = "Leads"

// DefaultXLSXName is the suggested download file name.
const DefaultXLSXName = "quora_leads.xlsx"

// maxColWidth is the widest column a worksheet accepts.
const maxColWidth = 255

// WriteXLSX writes leads as a workbook with a single "Leads" sheet. Column A
// holds a 1-based row index; the remaining columns follow types.LeadColumns
// and are sized to their longest value plus two, capped at the sheet maximum.
func WriteXLSX(w io.Writer, leads []types.LeadRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(types.LeadColumns)+1)
	header = append(header, "")
	for _, c := range types.LeadColumns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	widths := make([]int, len(types.LeadColumns))
	for i, c := range types.LeadColumns {
		widths[i] = utf8.RuneCountInString(c)
	}

	for i, l := range leads {
		row := make([]any, 0, len(header))
		row = append(row, i+1)
		row = append(row, l.Values()...)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}

		for j, s := range l.Strings() {
			if n := utf8.RuneCountInString(s); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for j, width := range widths {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(width+2, maxColWidth))); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
