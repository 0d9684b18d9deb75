// Package export writes distribution tables to spreadsheet files.
package export

import (
	"cmp"
	"fmt"
	"math/big"

	"github.com/xuri/excelize/v2"

	"godice/domain/dist"
	"godice/internal/errors"
)

const sheet = "Distribution"

// WriteXLSX writes the distribution as an outcome/weight/probability table.
func WriteXLSX[O cmp.Ordered](path string, d *dist.Die[O]) error {
	if d == nil {
		return errors.InvalidInput("nil distribution")
	}
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "dropping default sheet")
	}

	headers := []string{"Outcome", "Weight", "Probability"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	row := 2
	var failed error
	d.Each(func(o O, w *big.Int) {
		if failed != nil {
			return
		}
		p, _ := d.Probability(o).Float64()
		values := []any{fmt.Sprintf("%v", o), w.String(), p}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				failed = errors.Wrap(err, "writing row")
				return
			}
		}
		row++
	})
	if failed != nil {
		return failed
	}

	denomCell, _ := excelize.CoordinatesToCellName(1, row+1)
	if err := f.SetCellValue(sheet, denomCell,
		fmt.Sprintf("Denominator: %s", d.Denominator().String())); err != nil {
		return errors.Wrap(err, "writing denominator")
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}
