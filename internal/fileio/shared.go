package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sheet is the first worksheet of an uploaded file, one map per data row.
type Sheet struct {
	Headers []string
	Rows    []map[string]string
}

// ReadSheet picks a reader by file extension. headerRow is 1-based.
func ReadSheet(r io.Reader, filename string, headerRow int) (*Sheet, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r, headerRow)
	case ".csv", ".txt":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return &Sheet{}, nil
	}
	h := pickHeader(rows, headerRow)
	return &Sheet{Headers: h, Rows: rowsToMaps(rows, h, headerRow)}, nil
}

// pickHeader takes the header row and names empty cells "Column N".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps keys every row after the header by header name. Blank rows and
// rows repeating the header (multi-page exports) are dropped.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty, repeated := true, true
		for c, hdr := range headers {
			var v string
			if c < len(rec) {
				v = strings.TrimSpace(rec[c])
			}
			m[hdr] = v
			if v != "" {
				empty = false
			}
			if v != hdr {
				repeated = false
			}
		}
		if empty || repeated {
			continue
		}
		out = append(out, m)
	}
	return out
}
