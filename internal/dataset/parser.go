package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/signaljob/internal/contracts"
)

// QuoteMode selects how the parser treats the '"' character
type QuoteMode int

const (
	// QuoteNone treats '"' as ordinary content. A quoted field containing
	// the delimiter is split like any other text.
	QuoteNone QuoteMode = iota
	// QuoteStandard applies RFC 4180 quoting
	QuoteStandard
)

func (m QuoteMode) String() string {
	switch m {
	case QuoteNone:
		return "none"
	case QuoteStandard:
		return "standard"
	default:
		return fmt.Sprintf("QuoteMode(%d)", int(m))
	}
}

// Parser splits delimited text into a header and data records.
// Blank lines are skipped. A record with fewer fields than the header is
// padded with empty cells; a record with more fields is a parse error.
//
// This differs from pandas, which takes a first data row exactly one field
// wider than the header to mean the file has an unnamed index column and
// shifts every row by one. Here that row fails like any other wide row.
type Parser struct {
	Delimiter rune
	Quote     QuoteMode
}

// DefaultParser is the parser used for price files: comma-delimited with
// quote mode none.
func DefaultParser() Parser {
	return Parser{Delimiter: ',', Quote: QuoteNone}
}

// Parse reads all of r. header is nil when r holds no non-blank line.
func (p Parser) Parse(r io.Reader) (header []string, records [][]string, err error) {
	switch p.Quote {
	case QuoteNone:
		header, records, err = p.parseRaw(r)
	case QuoteStandard:
		header, records, err = p.parseQuoted(r)
	default:
		return nil, nil, fmt.Errorf("unsupported quote mode %v", p.Quote)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, records, nil
}

// parseRaw splits lines on the delimiter without interpreting quotes.
// encoding/csv has no such mode: even with LazyQuotes a leading quote opens a
// quoted field.
func (p Parser) parseRaw(r io.Reader) ([]string, [][]string, error) {
	reader := bufio.NewReader(r)
	sep := string(p.Delimiter)

	var header []string
	var records [][]string
	lineNo := 0

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, nil, fmt.Errorf("read input: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		lineNo++

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			fields := strings.Split(line, sep)
			if header == nil {
				header = fields
			} else {
				record, err := fitRecord(fields, len(header), lineNo)
				if err != nil {
					return nil, nil, err
				}
				records = append(records, record)
			}
		}

		if readErr != nil {
			break
		}
	}

	return header, records, nil
}

func (p Parser) parseQuoted(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Delimiter
	reader.FieldsPerRecord = -1

	var header []string
	var records [][]string

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, contracts.ParseError(fmt.Sprintf("parse input: %v", err), err)
		}

		if header == nil {
			header = fields
			continue
		}

		line, _ := reader.FieldPos(0)
		record, err := fitRecord(fields, len(header), line)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	return header, records, nil
}

// fitRecord pads fields to width or rejects it when it is wider
func fitRecord(fields []string, width, lineNo int) ([]string, error) {
	if len(fields) > width {
		return nil, contracts.ParseError(
			fmt.Sprintf("Expected %d fields in line %d, saw %d", width, lineNo, len(fields)),
			nil,
		)
	}
	for len(fields) < width {
		fields = append(fields, "")
	}
	return fields, nil
}
