// Package export writes detected reply tables to spreadsheet files.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/asistan/internal/models"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	invalidChars  = `:\/?*[]`
	fallbackTitle = "Tablo"
)

// SheetName turns a table title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		return fallbackTitle
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}

// WriteXLSX writes table as a single-sheet workbook to w. The header row is
// bold; rows shorter or longer than the header are written as they are.
func WriteXLSX(w io.Writer, table *models.TableData) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(table.Title)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	row := 1
	if len(table.Headers) > 0 {
		if err := setRow(f, sheet, row, table.Headers); err != nil {
			return err
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		row++
	}
	for _, cells := range table.Rows {
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

// SaveXLSX writes table to path.
func SaveXLSX(path string, table *models.TableData) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, table); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
