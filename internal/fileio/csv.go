package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV detects the encoding from the first bytes and decodes to UTF-8.
// Excel on Swedish Windows saves windows-1252; older Russian exports use 1251.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(4096)
	var dec io.Reader = br
	if enc := detectEncoding(peek); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if sep := sniffSeparator(peek); sep != 0 {
		cr.Comma = sep
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// detectEncoding returns nil for UTF-8 (and plain ASCII) input.
func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 || utf8.Valid(peek) {
		return nil
	}
	cs := ""
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		cs = strings.ToLower(det.Charset)
	}
	switch cs {
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	default:
		// not UTF-8 and not Cyrillic: Latin-1 family
		return charmap.Windows1252
	}
}

// sniffSeparator prefers ';' when the first line has more semicolons than
// commas, which is what Excel writes in locales with a decimal comma.
func sniffSeparator(peek []byte) rune {
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return 0
}
