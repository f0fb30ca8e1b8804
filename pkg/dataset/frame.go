// Package dataset holds the column-typed in-memory table the pipeline works
// on, the CSV loader that infers its schema, and the seeded train/test split.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Type is the inferred type of a column.
type Type int

const (
	Integer Type = iota
	Double
	String
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Double:
		return "double"
	default:
		return "string"
	}
}

// Column is a single named column. Raw keeps the original cell text ("" for
// a null cell); Vals carries the numeric view with NaN at null or
// non-numeric cells, so numeric consumers never re-parse.
type Column struct {
	Name string
	Type Type
	Raw  []string
	Vals []float64
	Null []bool
}

// NumNull returns the number of null cells.
func (c *Column) NumNull() int {
	n := 0
	for _, isNull := range c.Null {
		if isNull {
			n++
		}
	}
	return n
}

// SetFloat overwrites cell i with a numeric value and clears its null flag.
func (c *Column) SetFloat(i int, v float64) {
	c.Vals[i] = v
	c.Raw[i] = strconv.FormatFloat(v, 'f', -1, 64)
	c.Null[i] = false
}

// SetString overwrites cell i with a string value and clears its null flag.
func (c *Column) SetString(i int, v string) {
	c.Raw[i] = v
	c.Null[i] = false
}

// Field describes one column in a Schema.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema is the ordered set of column descriptions.
type Schema []Field

// String renders the schema as a tree, one line per column:
//
//	root
//	 |-- Age: double (nullable = true)
func (s Schema) String() string {
	var b strings.Builder
	b.WriteString("root\n")
	for _, f := range s {
		fmt.Fprintf(&b, " |-- %s: %s (nullable = %t)\n", f.Name, f.Type, f.Nullable)
	}
	return b.String()
}

// Frame is a table of columns plus, once assembled, a dense feature matrix.
type Frame struct {
	cols  []*Column
	index map[string]int

	// FeatureNames/Features are populated by the assembler stage.
	FeatureNames []string
	Features     [][]float64
}

// New builds a frame from columns. All columns must share a length and have
// distinct names.
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return len(f.Features)
	}
	return len(f.cols[0].Raw)
}

// Columns returns the columns in order.
func (f *Frame) Columns() []*Column { return f.cols }

// Column looks a column up by name.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// AddColumn appends a column, rejecting duplicates and length mismatches.
func (f *Frame) AddColumn(c *Column) error {
	if _, ok := f.index[c.Name]; ok {
		return fmt.Errorf("dataset: duplicate column %q", c.Name)
	}
	if len(f.cols) > 0 && len(c.Raw) != f.Len() {
		return fmt.Errorf("dataset: column %q has %d rows, frame has %d", c.Name, len(c.Raw), f.Len())
	}
	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// Schema reports each column's inferred type and nullability.
func (f *Frame) Schema() Schema {
	s := make(Schema, 0, len(f.cols))
	for _, c := range f.cols {
		s = append(s, Field{Name: c.Name, Type: c.Type, Nullable: c.NumNull() > 0})
	}
	return s
}

// Floats returns the numeric view of a column. Null cells are NaN.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("dataset: no column %q", name)
	}
	if c.Type == String {
		return nil, fmt.Errorf("dataset: column %q is a string column", name)
	}
	return c.Vals, nil
}

// Clone returns a deep copy of the frame. Stages transform copies so the
// caller's frame is never mutated.
func (f *Frame) Clone() *Frame {
	rows := make([]int, f.Len())
	for i := range rows {
		rows[i] = i
	}
	return f.Select(rows)
}

// Select returns a new frame containing the given rows, in order. The
// feature matrix, when present, is subset alongside the columns.
func (f *Frame) Select(rows []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.cols))}
	for _, c := range f.cols {
		nc := &Column{
			Name: c.Name,
			Type: c.Type,
			Raw:  make([]string, len(rows)),
			Vals: make([]float64, len(rows)),
			Null: make([]bool, len(rows)),
		}
		for i, r := range rows {
			nc.Raw[i] = c.Raw[r]
			nc.Vals[i] = c.Vals[r]
			nc.Null[i] = c.Null[r]
		}
		out.index[nc.Name] = len(out.cols)
		out.cols = append(out.cols, nc)
	}
	if f.Features != nil {
		out.FeatureNames = f.FeatureNames
		out.Features = make([][]float64, len(rows))
		for i, r := range rows {
			out.Features[i] = f.Features[r]
		}
	}
	return out
}

// ReadCSV loads a header-rowed CSV into a frame, inferring each column's
// type from its values: integer when every non-null cell parses as an int,
// double when every non-null cell parses as a float, string otherwise.
// Rows with the wrong field count are skipped with a logged warning.
func ReadCSV(path string, log *zap.Logger) (*Frame, error) {
	if log == nil {
		log = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: %s has no data rows", path)
	}

	header := records[0]
	var rows [][]string
	skipped := 0
	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}
	if skipped > 0 {
		log.Warn("skipped malformed rows", zap.Int("count", skipped), zap.String("path", path))
	}

	f := &Frame{index: make(map[string]int, len(header))}
	for j, name := range header {
		col := buildColumn(name, rows, j)
		f.index[name] = len(f.cols)
		f.cols = append(f.cols, col)
	}
	log.Info("loaded dataset",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(header)))
	return f, nil
}

func buildColumn(name string, rows [][]string, j int) *Column {
	n := len(rows)
	c := &Column{
		Name: name,
		Raw:  make([]string, n),
		Vals: make([]float64, n),
		Null: make([]bool, n),
	}
	isInt, isFloat := true, true
	for i, rec := range rows {
		v := strings.TrimSpace(rec[j])
		c.Raw[i] = v
		if v == "" {
			c.Null[i] = true
			c.Vals[i] = math.NaN()
			continue
		}
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				isFloat = false
			} else {
				c.Vals[i] = f
			}
		}
	}
	switch {
	case isInt:
		c.Type = Integer
	case isFloat:
		c.Type = Double
	default:
		c.Type = String
		for i := range c.Vals {
			c.Vals[i] = math.NaN()
		}
	}
	return c
}
