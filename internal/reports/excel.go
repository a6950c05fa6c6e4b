package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var materialHeader = []interface{}{
	"Material Code", "Material Name", "Date", "Quantity Added", "Added By",
	"Quantity Consumed", "Consumed By", "Remaining", "Amount",
}

// WriteMaterialReportXLSX writes one row per addition and consumption, then a
// total row.
func WriteMaterialReportXLSX(w io.Writer, r MaterialReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := fmt.Sprintf("%04d-%02d", r.Year, r.Month)
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &materialHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	writeRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, m := range r.Materials {
		for _, a := range m.Additions {
			amount, _ := a.Amount.Float64()
			if err := writeRow([]interface{}{
				m.MatCode, m.MatName, a.Date.Format("2006-01-02"), a.Quantity, a.AddedBy, 0, "", m.Remaining, amount,
			}); err != nil {
				return fmt.Errorf("write addition row: %w", err)
			}
		}
		for _, c := range m.Consumptions {
			if err := writeRow([]interface{}{
				m.MatCode, m.MatName, c.Date.Format("2006-01-02"), 0, "", c.Quantity, c.ConsumedBy, m.Remaining, "",
			}); err != nil {
				return fmt.Errorf("write consumption row: %w", err)
			}
		}
	}

	total, _ := r.TotalAmount.Float64()
	if err := writeRow([]interface{}{"Total", "", "", "", "", "", "", "", total}); err != nil {
		return fmt.Errorf("write total row: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "I", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return f.Write(w)
}
