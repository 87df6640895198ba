// Package pricelist reads supplier price lists into ingredient prices. CSV files
// are read by header name; PDF and plain text lists are read line by line.
package pricelist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"brigade/internal/costing"
)

var (
	// ErrEmpty reports a list without a single usable price.
	ErrEmpty = errors.New("pricelist: no prices found")
	// ErrMissingColumns reports a CSV header without name, unit and cost.
	ErrMissingColumns = errors.New("pricelist: csv needs name, unit and cost columns")
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
	// "Shallots ........ 3.50 / kg" or "Double Cream  $4.80/l"
	textLinePattern = regexp.MustCompile(`^(.+?)[\s.]+[$€£]?\s*(\d+(?:[.,]\d+)?)\s*/\s*([A-Za-z][A-Za-z. ]*)$`)
)

// Entry is one ingredient price. Optional percentages are nil when the list
// does not provide them.
type Entry struct {
	Name         string
	Unit         string
	Cost         float64
	TrimPercent  *float64
	YieldPercent *float64
	Category     string
	Supplier     string
}

// Issue describes a line that could not be read.
type Issue struct {
	Line   int
	Text   string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Reason)
}

// List is the result of parsing a price list.
type List struct {
	Entries []Entry
	Issues  []Issue
}

// Parse reads data according to its mime type. PDFs have their text extracted
// first; anything that is not CSV is read as price lines.
func Parse(data []byte, mime string) (List, error) {
	lower := strings.ToLower(mime)
	switch {
	case strings.Contains(lower, "pdf"):
		text, err := ExtractPDFText(data)
		if err != nil {
			return List{}, fmt.Errorf("extract pdf text: %w", err)
		}
		return ParseText(text)
	case strings.Contains(lower, "csv"):
		return ParseCSV(bytes.NewReader(data))
	default:
		return ParseText(string(data))
	}
}

// MimeTypeFromName guesses the mime type of an uploaded price list.
func MimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// ParseCSV reads a CSV price list with a header row. Columns are matched by
// name, case-insensitively: name, unit and cost are required; trim_percent,
// yield_percent, category and supplier are optional.
func ParseCSV(r io.Reader) (List, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return List{}, err
	}
	if len(rows) == 0 {
		return List{}, ErrEmpty
	}

	columns := make(map[string]int, len(rows[0]))
	for idx, key := range rows[0] {
		columns[headerKey(key)] = idx
	}
	for _, required := range []string{"name", "unit", "cost"} {
		if _, ok := columns[required]; !ok {
			return List{}, ErrMissingColumns
		}
	}

	field := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var list List
	for n, row := range rows[1:] {
		line := n + 2
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		entry, reason := buildEntry(field(row, "name"), field(row, "unit"), field(row, "cost"))
		if reason != "" {
			list.Issues = append(list.Issues, Issue{Line: line, Text: strings.Join(row, ","), Reason: reason})
			continue
		}
		entry.TrimPercent = parseOptionalPercent(field(row, "trim_percent"))
		entry.YieldPercent = parseOptionalPercent(field(row, "yield_percent"))
		entry.Category = normalizeText(field(row, "category"))
		entry.Supplier = normalizeText(field(row, "supplier"))
		list.Entries = append(list.Entries, entry)
	}

	if len(list.Entries) == 0 {
		return list, ErrEmpty
	}
	return list, nil
}

// ParseText reads "name ... cost / unit" lines. Lines without a price, such as
// headings, are ignored; priced lines with an unknown unit are reported.
func ParseText(text string) (List, error) {
	var list List
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		match := textLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		entry, reason := buildEntry(match[1], match[3], match[2])
		if reason != "" {
			list.Issues = append(list.Issues, Issue{Line: n + 1, Text: line, Reason: reason})
			continue
		}
		list.Entries = append(list.Entries, entry)
	}
	if len(list.Entries) == 0 {
		return list, ErrEmpty
	}
	return list, nil
}

// ExtractPDFText returns the plain text of every page.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", err
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			builder.WriteString(strings.Join(words, " "))
			builder.WriteString("\n")
		}
	}
	return builder.String(), nil
}

func buildEntry(name, unit, cost string) (Entry, string) {
	name = strings.Trim(normalizeText(name), " .:-")
	if name == "" {
		return Entry{}, "missing name"
	}
	canonical, ok := costing.CanonicalUnit(unit)
	if !ok {
		return Entry{}, fmt.Sprintf("unknown unit %q", strings.TrimSpace(unit))
	}
	value, ok := parseNumber(cost)
	if !ok || value <= 0 {
		return Entry{}, fmt.Sprintf("invalid cost %q", strings.TrimSpace(cost))
	}
	return Entry{Name: name, Unit: canonical, Cost: value}, ""
}

func headerKey(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer(" ", "_", "-", "_", "%", "percent").Replace(key)
	switch key {
	case "ingredient", "ingredient_name", "item":
		return "name"
	case "price", "cost_per_unit", "unit_cost":
		return "cost"
	case "base_unit", "uom":
		return "unit"
	case "trim", "waste", "waste_percent", "trimpercent":
		return "trim_percent"
	case "yield", "yieldpercent":
		return "yield_percent"
	}
	return key
}

func normalizeText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return cleanWhitespace.ReplaceAllString(value, " ")
}

func parseNumber(value string) (float64, bool) {
	match := numberPattern.FindString(strings.TrimSpace(value))
	if match == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func parseOptionalPercent(value string) *float64 {
	if normalizeText(value) == "" {
		return nil
	}
	parsed, ok := parseNumber(value)
	if !ok || parsed < 0 || parsed > 100 {
		return nil
	}
	return &parsed
}
