package xlstream

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

const stylesPath = "xl/styles.xml"

// Category classifies what a cell's number format means for value
// conversion. It decides how numeric-looking text is interpreted when the
// cell carries no explicit type, and whether a bare numeric type is
// actually a date.
type Category int

const (
	// CategoryNone means the style id resolved to no classification.
	CategoryNone Category = iota
	// CategoryUnsupported covers formats the converter does not
	// interpret; the raw text passes through unchanged.
	CategoryUnsupported
	CategoryString
	CategoryNumber
	CategoryPercentage
	CategoryDate
	CategoryTime
	CategoryDateTime
	// CategoryBigDecimal marks formats whose values should keep full
	// precision.
	CategoryBigDecimal
)

// builtinCategories classifies the number formats predefined by the file
// format. Ids 164 and up are document-defined and classified from their
// format codes.
var builtinCategories = map[int]Category{
	0:  CategoryUnsupported, // General
	1:  CategoryNumber,
	2:  CategoryNumber,
	3:  CategoryNumber,
	4:  CategoryNumber,
	9:  CategoryPercentage,
	10: CategoryPercentage,
	11: CategoryBigDecimal,
	12: CategoryNumber,
	13: CategoryNumber,
	14: CategoryDate,
	15: CategoryDate,
	16: CategoryDate,
	17: CategoryDate,
	18: CategoryTime,
	19: CategoryTime,
	20: CategoryTime,
	21: CategoryTime,
	22: CategoryDateTime,
	37: CategoryNumber,
	38: CategoryNumber,
	39: CategoryNumber,
	40: CategoryNumber,
	45: CategoryTime,
	46: CategoryTime,
	47: CategoryTime,
	48: CategoryBigDecimal,
	49: CategoryString,
}

// styleTable maps a cell's style id (the position of its xf record in
// cellXfs) to a Category. It is built once per document and read-only
// during row decoding.
type styleTable struct {
	categories []Category
}

func (st *styleTable) category(styleID int) Category {
	if st == nil || styleID < 0 || styleID >= len(st.categories) {
		return CategoryNone
	}
	return st.categories[styleID]
}

// loadStyles reads the style part into a styleTable. A document without
// the part yields an empty table.
func loadStyles(a Archive) (*styleTable, error) {
	if !a.PartExists(stylesPath) {
		return &styleTable{}, nil
	}
	rc, err := a.OpenPart(stylesPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseStyles(rc)
}

func parseStyles(r io.Reader) (*styleTable, error) {
	custom := make(map[int]Category)
	var xfs []int
	var inNumFmts, inCellXfs bool

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "numFmts":
				inNumFmts = true
			case "cellXfs":
				inCellXfs = true
			case "numFmt":
				if inNumFmts {
					id := -1
					code := ""
					for _, attr := range t.Attr {
						switch attr.Name.Local {
						case "numFmtId":
							id, _ = strconv.Atoi(attr.Value)
						case "formatCode":
							code = attr.Value
						}
					}
					if id >= 0 {
						custom[id] = classifyFormatCode(code)
					}
				}
			case "xf":
				if inCellXfs {
					id := 0
					for _, attr := range t.Attr {
						if attr.Name.Local == "numFmtId" {
							id, _ = strconv.Atoi(attr.Value)
						}
					}
					xfs = append(xfs, id)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "numFmts":
				inNumFmts = false
			case "cellXfs":
				inCellXfs = false
			}
		}
	}

	categories := make([]Category, len(xfs))
	for i, id := range xfs {
		if cat, ok := builtinCategories[id]; ok {
			categories[i] = cat
		} else if cat, ok := custom[id]; ok {
			categories[i] = cat
		} else {
			categories[i] = CategoryUnsupported
		}
	}
	return &styleTable{categories: categories}, nil
}

// classifyFormatCode decides a category for a document-defined format
// code. Quoted literals, bracket sections (colors, conditions, elapsed
// markers) and escaped characters carry no type information and are
// stripped before inspection.
func classifyFormatCode(code string) Category {
	if code == "" || strings.EqualFold(code, "general") {
		return CategoryUnsupported
	}
	stripped := strings.ToLower(stripFormatLiterals(code))
	if strings.Contains(stripped, "@") {
		return CategoryString
	}
	if strings.Contains(stripped, "%") {
		return CategoryPercentage
	}
	if strings.Contains(stripped, "e+") || strings.Contains(stripped, "e-") {
		return CategoryBigDecimal
	}
	hasDate := strings.ContainsAny(stripped, "yd")
	hasTime := strings.ContainsAny(stripped, "hs")
	switch {
	case hasDate && hasTime:
		return CategoryDateTime
	case hasDate:
		return CategoryDate
	case hasTime:
		return CategoryTime
	case strings.Contains(stripped, "m"):
		// A bare run of m's is a month with nothing to disambiguate it.
		return CategoryDate
	}
	if strings.ContainsAny(stripped, "0#?") {
		return CategoryNumber
	}
	return CategoryUnsupported
}

func stripFormatLiterals(code string) string {
	var b strings.Builder
	var inQuote, inBracket bool
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
