package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type Workbook struct {
	File *excelize.File
}

// NewWorkbook собирает книгу: по листу на SheetSpec, жирный заголовок и автофильтр.
func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook: no sheets")
	}
	f := excelize.NewFile()
	const defaultSheet = "Sheet1"

	for i, s := range sheets {
		name := sheetName(s.Title)
		if i == 0 {
			// первый лист переименовываем из стандартного
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}

		for col, h := range s.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		for r, row := range s.Rows {
			for c, val := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		if err := ApplyDefaultExcelFormatting(f, name); err != nil {
			return nil, fmt.Errorf("format sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return &Workbook{File: f}, nil
}

// WriteTo пишет xlsx в w.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.File.WriteTo(out)
}

func (w *Workbook) Close() error { return w.File.Close() }

// sheetName: Excel ограничивает имя листа 31 символом.
func sheetName(title string) string {
	r := []rune(invalidSheetRe.ReplaceAllString(title, "_"))
	if len(r) > 31 {
		r = r[:31]
	}
	if len(r) == 0 {
		return "Sheet"
	}
	return string(r)
}
