package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/wonny/signaljob/internal/contracts"
)

// Load reads the price file at path with the default parser
func Load(path string) (*Dataset, error) {
	return LoadWith(path, DefaultParser())
}

// LoadWith reads the price file at path.
// Errors are *contracts.Error values, checked in this order:
//   - KindNotFound when the file does not exist
//   - KindParse when a row is wider than the header
//   - KindValidation (ErrEmptyInput) when there is no data row
//   - KindValidation (ErrMissingColumn, ErrDuplicateColumn) when the
//     normalized header does not hold exactly one close column
func LoadWith(path string, parser Parser) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, contracts.NotFoundError("Input CSV not found", err)
		}
		return nil, contracts.ParseError(fmt.Sprintf("open input: %v", err), err)
	}
	defer file.Close()

	header, records, err := parser.Parse(file)
	if err != nil {
		if contracts.KindOf(err) != "" {
			return nil, err
		}
		return nil, contracts.ParseError(err.Error(), err)
	}

	if len(header) == 0 || len(records) == 0 {
		return nil, contracts.ValidationError("Input CSV is empty", contracts.ErrEmptyInput)
	}

	ds := &Dataset{
		Columns: NormalizeHeader(header),
		Records: records,
	}
	for _, record := range ds.Records {
		CleanRecord(record)
	}

	if err := checkSchema(ds.Columns); err != nil {
		return nil, err
	}

	return ds, nil
}

// NormalizeHeader strips '"', trims whitespace and lower-cases each name
func NormalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, `"`, "")))
	}
	return columns
}

// CleanRecord strips '"' from every cell in place
func CleanRecord(record []string) {
	for i, cell := range record {
		record[i] = strings.ReplaceAll(cell, `"`, "")
	}
}

func checkSchema(columns []string) error {
	count := 0
	for _, col := range columns {
		if col == CloseColumn {
			count++
		}
	}

	switch {
	case count == 0:
		return missingCloseError()
	case count > 1:
		return contracts.ValidationError(
			fmt.Sprintf("Duplicate 'close' column in dataset: %d columns normalize to 'close'.", count),
			contracts.ErrDuplicateColumn,
		)
	}
	return nil
}
