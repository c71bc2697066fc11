package importer

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Service dispatches an upload to the parser registered for its format.
type Service struct {
	parsers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		parsers: map[Format]Importer{
			FormatCSV:  NewCSVParser(),
			FormatXLSX: NewXLSXParser(),
		},
	}
}

// FormatFromFilename picks XLSX for .xlsx files and CSV for anything else.
func FormatFromFilename(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}

	return FormatCSV
}

func (s *Service) Import(format Format, r io.Reader) (*Result, error) {
	parser, ok := s.parsers[Format(strings.ToLower(string(format)))]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	res, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	slog.Info("invoice list parsed", "format", format, "invoices", len(res.Invoices), "rejected_rows", len(res.Errors))

	return res, nil
}
