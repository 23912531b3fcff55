package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/predictiff/companymatch/internal/models"
)

// Dataset column headers. Matching is case-insensitive; unknown columns are
// ignored so vendor extracts with extra fields load unchanged.
const (
	colID            = "ID"
	colCompanyName   = "COMPANY_NAME"
	colNameCleaned   = "COMPANY_NAME_CLEANED"
	colDomainName    = "DOMAIN_NAME"
	colDomainPart    = "DOMAIN_PART"
	colSource        = "SOURCE"
	colEmployeeCount = "EMPLOYEE_COUNT"
	colIndustry      = "INDUSTRY_CAT_STD"
	colCountry       = "COUNTRY"
	colSizeDesc      = "SIZE_DESC_STD"
	colLastSeen      = "LAST_SEEN_DATE"
	colLastVerified  = "DATE_LAST_VERIFIED"
	colAltNames      = "ALTERNATIVE_NAMES"
)

// altNameSeparator splits the alternative-names column into individual names.
const altNameSeparator = "|"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// columnMap resolves header names to their positions.
type columnMap map[string]int

func newColumnMap(header []string) columnMap {
	m := make(columnMap, len(header))
	for i, h := range header {
		m[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return m
}

func (m columnMap) get(row []string, col string) string {
	i, ok := m[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// recordFromRow maps one dataset row to a ReferenceRecord. The cleaned name
// column is preferred over the raw one when both are present, matching the
// columns the index searches on.
func recordFromRow(cols columnMap, row []string) *models.ReferenceRecord {
	name := cols.get(row, colNameCleaned)
	if name == "" {
		name = cols.get(row, colCompanyName)
	}
	rec := &models.ReferenceRecord{
		ID:         cols.get(row, colID),
		Domain:     cols.get(row, colDomainName),
		DomainPart: cols.get(row, colDomainPart),
		Name:       name,
		Source:     cols.get(row, colSource),
		Industry:   cols.get(row, colIndustry),
		Country:    cols.get(row, colCountry),
		SizeDesc:   cols.get(row, colSizeDesc),
	}
	if v := cols.get(row, colEmployeeCount); v != "" {
		// Vendor extracts sometimes carry counts as floats ("220000.0").
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			rec.EmployeeCount = int(n)
		}
	}
	rec.LastSeen = parseDate(cols.get(row, colLastSeen))
	rec.LastVerified = parseDate(cols.get(row, colLastVerified))
	if v := cols.get(row, colAltNames); v != "" {
		for _, alt := range strings.Split(v, altNameSeparator) {
			if alt = strings.TrimSpace(alt); alt != "" {
				rec.AltNames = append(rec.AltNames, alt)
			}
		}
	}
	return rec
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseCSV reads records from CSV data. The first row must be a header. Rows
// without a company name or domain are skipped; they can never match.
func parseCSV(r io.Reader) ([]*models.ReferenceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty dataset: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := newColumnMap(header)

	var recs []*models.ReferenceRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := recordFromRow(cols, row)
		if rec.Name == "" && rec.Domain == "" {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// parseXLSX reads records from the first sheet of an Excel workbook.
func parseXLSX(path string) ([]*models.ReferenceRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset: missing header row")
	}
	cols := newColumnMap(rows[0])

	var recs []*models.ReferenceRecord
	for _, row := range rows[1:] {
		rec := recordFromRow(cols, row)
		if rec.Name == "" && rec.Domain == "" {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
