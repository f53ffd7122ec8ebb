// Package importer converts checkbook and trade CSV files to and from
// ledger records. Malformed rows are skipped, not fatal.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Format names a CSV layout.
type Format string

const (
	FormatCash        Format = "cash"
	FormatInvestments Format = "investments"
)

// Skip records a dropped row. Line is the 1-based line in the file.
type Skip struct {
	Line   int
	Reason string
}

func (s Skip) String() string {
	return fmt.Sprintf("line %d: %s", s.Line, s.Reason)
}

// Row is an accepted record and the file line it came from.
type Row[T any] struct {
	Line   int
	Record T
}

// Result is the outcome of parsing one file. Only the slice matching the
// parser's format is populated.
type Result struct {
	Format Format
	Cash   []Row[model.TransactionDraft]
	Trades []Row[model.InvestmentTransaction]
	// OpeningBalance is the Balance of the first cash data row, when numeric.
	OpeningBalance decimal.NullDecimal
	Skips          []Skip
}

// Drafts returns the accepted cash records in file order.
func (r *Result) Drafts() []model.TransactionDraft {
	return records(r.Cash)
}

// Investments returns the accepted trades in file order.
func (r *Result) Investments() []model.InvestmentTransaction {
	return records(r.Trades)
}

// Accepted counts the rows kept from the file.
func (r *Result) Accepted() int {
	return len(r.Cash) + len(r.Trades)
}

func records[T any](rows []Row[T]) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row.Record
	}
	return out
}

// Parser converts one CSV layout into ledger records.
type Parser interface {
	Parse(r io.Reader) (*Result, error)
	Format() Format
}

// Registry holds named parsers.
type Registry struct {
	parsers map[Format]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[Format]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := Format(strings.ToLower(string(p.Format())))
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + string(key))
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format Format) Parser {
	return r.parsers[Format(strings.ToLower(string(format)))]
}

// DefaultRegistry returns a registry with the cash and investment parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CashParser{})
	r.Register(InvestmentParser{})
	return r
}

// ParseFile detects the layout of the file at path and parses it.
func (r *Registry) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	format, err := Detect(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%s: no parser for format %q", filepath.Base(path), format)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}
	return p.Parse(f)
}

// table is a CSV file indexed by lower-cased header name.
type table struct {
	cols map[string]int
	rows []line
}

type line struct {
	num    int
	fields []string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading CSV: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	t := &table{cols: indexHeader(header)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		num, _ := cr.FieldPos(0)
		t.rows = append(t.rows, line{num: num, fields: rec})
	}
	return t, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}
	return cols
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// has reports whether every column is present in the header.
func (t *table) has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := t.cols[c]; !ok {
			return false
		}
	}
	return true
}

// get returns the trimmed field of rec under col, or "" when absent.
func (t *table) get(rec []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ParseMoney reads amounts like "$1,234.50", "-12" or "(12.00)".
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("non-numeric amount %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// Detect tells the two layouts apart by their header row.
func Detect(r io.Reader) (Format, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return "", fmt.Errorf("reading header: %w", err)
	}
	t := &table{cols: indexHeader(header)}
	switch {
	case t.has(investmentColumns...):
		return FormatInvestments, nil
	case t.has(colDate, colAmount):
		return FormatCash, nil
	}
	return "", fmt.Errorf("unrecognized CSV header %q", strings.Join(header, ","))
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// ImportDir is the subdirectory of the data directory scanned for CSVs.
const ImportDir = "import"

// processedDir is where imported files are moved, relative to ImportDir.
const processedDir = "processed"

// Scan returns the CSV files waiting in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, ImportDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves fileName from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	dir := filepath.Join(dataDir, ImportDir)
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(dir, fileName)
	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
