package enums

import (
	"fmt"
	"strings"
)

// ReportFormat enumerates the export formats the report extractor renders.
type ReportFormat string

const (
	ReportFormatExcel ReportFormat = "excel"
	ReportFormatCSV   ReportFormat = "csv"
)

var validReportFormats = []ReportFormat{
	ReportFormatExcel,
	ReportFormatCSV,
}

// String implements fmt.Stringer.
func (r ReportFormat) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReportFormat.
func (r ReportFormat) IsValid() bool {
	for _, candidate := range validReportFormats {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportFormat converts raw input into a ReportFormat.
func ParseReportFormat(value string) (ReportFormat, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validReportFormats {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report format %q", value)
}
