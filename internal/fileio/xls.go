package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// Legacy .xls exports carry no reliable charset; try the likely ones in order.
var xlsCharsets = []string{"windows-1252", "utf-8", "windows-1251"}

const xlsProbeCols = 256

func readXLS(r io.Reader, headerRow int) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var (
		wb      *xls.WorkBook
		lastErr error
	)
	for _, cs := range xlsCharsets {
		wb, err = xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	// Row.LastCol is unreliable in files written by accounting exports, so the
	// width is measured on the header and the rows below it.
	width := sheetWidth(sheet, headerRow)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cols := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := 0; j < width; j++ {
				cols[j] = cell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

func sheetWidth(sheet *xls.WorkSheet, headerRow int) int {
	width := 0
	for i := max(headerRow-1, 0); i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := width; j < xlsProbeCols; j++ {
			if cell(row.Col(j)) != "" {
				width = j + 1
			}
		}
	}
	return max(width, 1)
}

func cell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
}
