package xlstream

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Day zero of the two spreadsheet date systems. Serial date values count
// days from here; the 1900 system epoch is shifted two days back to absorb
// the historical leap-year defect.
var (
	epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// converter turns raw cell text into typed values using the document's
// shared strings and style classifications. Values are one of nil,
// string, float64, bool, time.Time or decimal.Decimal.
type converter struct {
	sharedStrings []string
	styles        *styleTable
	date1904      bool
}

// convert resolves a cell's raw text against its explicit type tag and
// style id.
//
// Empty text is always the empty value. When the cell has no explicit
// type, or a bare numeric type under a date-like format, the style
// category decides the interpretation. An unrecognized type tag passes the
// text through unchanged.
func (c *converter) convert(raw, typ string, styleID int) (interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	cat := c.styles.category(styleID)
	if typ == "" || (typ == "n" && isDateCategory(cat)) {
		return c.convertByCategory(raw, cat)
	}
	switch typ {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, NewXLSXError("invalid shared string index %q", raw)
		}
		if idx < 0 || idx >= len(c.sharedStrings) {
			return nil, NewXLSXError("shared string index %d out of range (table has %d entries)", idx, len(c.sharedStrings))
		}
		return c.sharedStrings[idx], nil
	case "n":
		return parseNumber(raw)
	case "b":
		return raw == "1", nil
	case "str", "inlineStr":
		return raw, nil
	default:
		return raw, nil
	}
}

func (c *converter) convertByCategory(raw string, cat Category) (interface{}, error) {
	switch cat {
	case CategoryNumber, CategoryPercentage:
		return parseNumber(raw)
	case CategoryDate, CategoryTime, CategoryDateTime:
		return c.convertSerialDate(raw)
	case CategoryBigDecimal:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			// Some writers emit text like "1E+3 " that the decimal
			// parser rejects but float parsing accepts.
			return parseNumber(raw)
		}
		return d, nil
	default:
		// CategoryNone, CategoryString, CategoryUnsupported
		return raw, nil
	}
}

// convertSerialDate interprets raw as a day count from the document's
// epoch. The fractional day becomes seconds, rounded to the nearest whole
// second.
func (c *converter) convertSerialDate(raw string) (interface{}, error) {
	days, err := parseNumber(raw)
	if err != nil {
		return nil, err
	}
	epoch := epoch1900
	if c.date1904 {
		epoch = epoch1904
	}
	seconds := int64(math.Round(days * 86400.0))
	return epoch.Add(time.Duration(seconds) * time.Second), nil
}

func parseNumber(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, NewXLSXError("invalid numeric cell value %q", raw)
	}
	return f, nil
}

func isDateCategory(cat Category) bool {
	return cat == CategoryDate || cat == CategoryTime || cat == CategoryDateTime
}
