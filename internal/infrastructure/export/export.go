package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/salesdash/backend/internal/domain/shared"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name. Empty selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", shared.NewDomainError("INVALID_EXPORT_FORMAT", fmt.Sprintf("Unsupported export format %q", s))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders the document in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, doc)
	case FormatXLSX:
		return writeXLSX(w, doc)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName builds a download name such as ventas_vagalume-tulum_2025-12-28_2026-01-03.xlsx.
func FileName(venueName, start, end string, format Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(venueName), "-"), "-")
	if slug == "" {
		slug = "sede"
	}
	name := "ventas_" + slug + "_" + start
	if end != "" && end != start {
		name += "_" + end
	}
	return name + "." + string(format)
}
