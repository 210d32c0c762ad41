package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// AppendCSV appends rows to path, writing the header only when the file is new.
func AppendCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := w.Write(r.values()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// AppendXLSX appends rows below the existing rows of the first sheet, creating
// the workbook with a header row when path does not exist.
func AppendXLSX(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, next, err := openWorkbook(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for _, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return err
		}
		vals := r.values()
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", next, err)
		}
		next++
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

// openWorkbook returns the workbook and the first free row number.
func openWorkbook(path string) (*excelize.File, int, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		sheet := f.GetSheetList()[0]
		header := Header
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			f.Close()
			return nil, 0, err
		}
		return f, 2, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open xlsx: %w", err)
	}
	existing, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, len(existing) + 1, nil
}
