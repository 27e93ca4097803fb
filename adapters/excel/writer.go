package excel

import (
	"io"
	"math"

	"heartdash/internal/errors"
	"heartdash/internal/frame"

	"github.com/xuri/excelize/v2"
)

// Writer exports frames to xlsx workbooks
type Writer struct {
	file *excelize.File
}

// NewWriter creates an empty workbook
func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// WriteFrame writes f to a sheet with a bold header row. Numeric cells are
// stored as numbers, missing cells are left blank.
func (w *Writer) WriteFrame(f *frame.Frame, sheet string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}
	index, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return errors.Wrap(err, "failed to look up sheet")
	}
	if index < 0 {
		if index, err = w.file.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", sheet)
		}
	}
	w.file.SetActiveSheet(index)

	headerStyle, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	columns := f.Columns()
	for j, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := w.file.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
		if err := w.file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return errors.Wrap(err, "failed to style header")
		}
	}

	for j, name := range columns {
		kind, _ := f.Kind(name)
		nums := f.Numbers(name)
		texts := f.Texts(name)
		for i := 0; i < f.Len(); i++ {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			var value interface{}
			if kind == frame.Numeric {
				if math.IsNaN(nums[i]) {
					continue
				}
				value = nums[i]
			} else {
				if texts[i] == "" {
					continue
				}
				value = texts[i]
			}
			if err := w.file.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "failed to write cell %s", cell)
			}
		}
	}
	return nil
}

// WriteTo streams the workbook
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// SaveAs writes the workbook to a file
func (w *Writer) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

// Close releases the workbook
func (w *Writer) Close() error {
	return w.file.Close()
}
