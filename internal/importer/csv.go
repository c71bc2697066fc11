package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	enc "github.com/MrJamesThe3rd/invoicetracker/internal/encoding"
)

// CSVParser reads comma- or semicolon-separated invoice lists in any
// encoding NewUTF8Reader can detect.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.NewUTF8ReaderCharset(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("parsing csv import", "charset", charset)

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, err := detectHeader(rows)
	if err != nil {
		return nil, err
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+2), nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas.
func sniffDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(4096)

	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	if bytes.Count(buf, []byte(";")) > bytes.Count(buf, []byte(",")) {
		return ';'
	}

	return ','
}
