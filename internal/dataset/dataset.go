package dataset

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/signaljob/internal/contracts"
)

// CloseColumn is the column the signal is computed from
const CloseColumn = "close"

// Dataset is a loaded price table.
// Columns are normalized names; Records are quote-stripped cells, one slice
// per data row, each as wide as Columns.
type Dataset struct {
	Columns []string
	Records [][]string
}

// Len returns the number of data rows
func (d *Dataset) Len() int {
	return len(d.Records)
}

// ColumnIndex returns the position of name in Columns, or -1
func (d *Dataset) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Close coerces the close column to numbers.
// A cell that is not a number becomes NaN (missing); only a column with no
// number at all is an error.
func (d *Dataset) Close() ([]float64, error) {
	idx := d.ColumnIndex(CloseColumn)
	if idx < 0 {
		return nil, missingCloseError()
	}

	values := make([]float64, len(d.Records))
	valid := 0
	for i, record := range d.Records {
		v, ok := ParseNumber(record[idx])
		if !ok {
			values[i] = math.NaN()
			continue
		}
		values[i] = v
		valid++
	}

	if valid == 0 {
		return nil, contracts.ValidationError(
			"'close' column contains no valid numeric values.",
			contracts.ErrAllValuesInvalid,
		)
	}

	return values, nil
}

// Summary describes the dataset given its coerced close column
func (d *Dataset) Summary(closes []float64) contracts.DatasetSummary {
	summary := contracts.DatasetSummary{
		Rows:    d.Len(),
		Columns: append([]string(nil), d.Columns...),
	}
	for _, v := range closes {
		if IsMissing(v) {
			summary.MissingClose++
		} else {
			summary.ValidClose++
		}
	}
	return summary
}

// ParseNumber converts a cleaned cell to a float.
// Surrounding whitespace is ignored. Empty cells, NaN and hexadecimal
// literals are not numbers; out-of-range values saturate to ±Inf.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.ContainsAny(s, "xX") {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IsMissing reports whether v is the missing marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

func missingCloseError() error {
	return contracts.ValidationError(
		"Missing required 'close' column in dataset.",
		contracts.ErrMissingColumn,
	)
}
