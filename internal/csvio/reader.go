// Package csvio discovers and parses the batch input files: one or more CSV
// files whose ORDER_UNIQUE_ID column lists the orders to validate. Optional
// context columns travel with each id into the report.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Recognized header columns. Matching is case-insensitive; only the order id
// column is mandatory.
const (
	headerOrderID        = "ORDER_UNIQUE_ID"
	headerArticleProduct = "ARTICLE_PRODUCT_ID"
	headerWorkflowStatus = "WORKFLOW_STATUS"
)

var (
	ErrNoInputFiles  = errors.New("no CSV files in input directory")
	ErrNoOrderColumn = errors.New("missing ORDER_UNIQUE_ID column")
	ErrNoOrders      = errors.New("no order ids found in input")
)

// Order is one order id plus the row context it came from
type Order struct {
	OrderID          string
	SourceFile       string
	RowNumber        int // 1-based data row within the source file
	ArticleProductID string
	WorkflowStatus   string
}

// Discover returns the CSV files in dir, sorted by name so batches process
// in a stable order
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputFiles, dir)
	}

	return files, nil
}

// LoadDir reads every CSV file in dir. Files that fail to parse are reported
// in problems and skipped; err is non-nil only when no file yields an order.
func LoadDir(dir string) (orders []Order, problems []error, err error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, nil, err
	}

	for _, file := range files {
		fromFile, err := ReadFile(file)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		orders = append(orders, fromFile...)
	}

	if len(orders) == 0 {
		return nil, problems, fmt.Errorf("%w: %s", ErrNoOrders, dir)
	}

	return orders, problems, nil
}

// ReadFile parses one CSV file into its orders
func ReadFile(path string) ([]Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Read(f, filepath.Base(path))
}

// Read parses CSV content. The delimiter is sniffed from the header line
// (tab-separated exports are common), and a UTF-8 BOM is tolerated. Rows
// with a blank order id are skipped.
func Read(r io.Reader, sourceName string) ([]Order, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceName, err)
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", sourceName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoOrderColumn, sourceName)
	}

	idCol, productCol, statusCol := -1, -1, -1
	for i, col := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case headerOrderID:
			idCol = i
		case headerArticleProduct:
			productCol = i
		case headerWorkflowStatus:
			statusCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOrderColumn, sourceName)
	}

	var orders []Order
	for n, row := range rows[1:] {
		id := field(row, idCol)
		if id == "" {
			continue
		}
		orders = append(orders, Order{
			OrderID:          id,
			SourceFile:       sourceName,
			RowNumber:        n + 1,
			ArticleProductID: field(row, productCol),
			WorkflowStatus:   field(row, statusCol),
		})
	}

	return orders, nil
}

// sniffDelimiter picks tab when the header line contains one, comma otherwise
func sniffDelimiter(raw []byte) rune {
	header := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		header = raw[:i]
	}
	if bytes.IndexByte(header, '\t') >= 0 {
		return '\t'
	}
	return ','
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
