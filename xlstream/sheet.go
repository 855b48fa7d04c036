package xlstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sheet is one worksheet of an open Book. Sheets are enumerated by the
// Book; row data is only read when a traversal is started with Rows,
// RowsWithMetaData or ExtractHeaders.
type Sheet struct {
	// Name is the sheet name shown on its tab.
	Name string

	// State is the sheet visibility: "" (visible), "hidden" or
	// "veryHidden".
	State string

	book *Book
	path string // container part name, e.g. "xl/worksheets/sheet1.xml"
	rid  string

	headers       []interface{}
	headersLoaded bool
}

// RowsOptions configures a decode pass over a sheet. The zero value
// streams plain positional rows.
type RowsOptions struct {
	// Headers keys each emitted row by the labels of the header row
	// instead of column position.
	Headers bool

	// HeaderRowNumber is the 1-based number of the header row. Zero
	// means row 1.
	HeaderRowNumber int

	// Metadata carries the row number and layout attributes on emitted
	// rows.
	Metadata bool
}

// Rows starts a lazy, forward-only, single-pass traversal of the sheet.
// The sheet part is opened when the iterator is created and released when
// the stream ends, fails, or Close is called. Iterators are not
// restartable; call Rows again for a fresh traversal.
//
// A sheet whose part is missing from the container yields an empty
// sequence, not an error.
func (s *Sheet) Rows(opts *RowsOptions) *RowIterator {
	it := &RowIterator{sheet: s}
	if opts != nil {
		it.opts = *opts
	}
	if it.opts.HeaderRowNumber <= 0 {
		it.opts.HeaderRowNumber = 1
	}
	if it.opts.Headers && !s.headersLoaded {
		if _, err := s.ExtractHeaders(it.opts.HeaderRowNumber); err != nil {
			it.err = err
			it.closed = true
			return it
		}
	}
	if !s.book.archive.PartExists(s.path) {
		it.closed = true
		return it
	}
	part, err := s.book.archive.OpenPart(s.path)
	if err != nil {
		it.err = err
		it.closed = true
		return it
	}
	it.part = part
	it.decoder = xml.NewDecoder(part)
	return it
}

// RowsWithMetaData is Rows with metadata output forced on.
func (s *Sheet) RowsWithMetaData(headers bool, headerRowNumber int) *RowIterator {
	return s.Rows(&RowsOptions{Headers: headers, HeaderRowNumber: headerRowNumber, Metadata: true})
}

// ExtractHeaders captures the header set from the row whose number equals
// rowNumber (zero means row 1) and caches it for the lifetime of the
// sheet. It is idempotent: once captured, later calls return the cached
// set unconditionally, regardless of the requested row number.
//
// The returned slice is the live header set. Callers may edit it in place
// (rename or deduplicate labels) and the edits are visible to every
// subsequent header-mode traversal.
func (s *Sheet) ExtractHeaders(rowNumber int) ([]interface{}, error) {
	if s.headersLoaded {
		return s.headers, nil
	}
	if rowNumber <= 0 {
		rowNumber = 1
	}
	it := s.Rows(&RowsOptions{Metadata: true})
	defer it.Close()
	for it.Next() {
		row := it.Row()
		if row.Number == rowNumber {
			s.headers = row.Cells
			break
		}
		if row.Number > rowNumber {
			// Row numbers ascend; the requested row is absent.
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	s.headersLoaded = true
	return s.headers, nil
}

// Headers returns the live header set, or nil if none has been captured
// yet. Edits to the returned slice are visible to later header-mode
// traversals.
func (s *Sheet) Headers() []interface{} {
	return s.headers
}

// SetHeaders replaces the header set wholesale and marks it as captured.
func (s *Sheet) SetHeaders(headers []interface{}) {
	s.headers = headers
	s.headersLoaded = true
}

// Decoder states. The two-events-per-element stream from the pull parser
// is driven through these four states by a single dispatch loop.
type decodeState int

const (
	stateIdle    decodeState = iota // between rows
	stateInRow                      // row element open, accumulating cells
	stateInCell                     // cell element open, awaiting a value
	stateInValue                    // inside a value or inline-text element
)

type cellContext struct {
	open    bool
	typ     string
	styleID int
	ref     string
	colx    int // fallback position when the reference is absent
}

// RowIterator streams rows from one sheet part. Use it like a scanner:
//
//	it := sheet.Rows(nil)
//	defer it.Close()
//	for it.Next() {
//	    row := it.Row()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type RowIterator struct {
	sheet *Sheet
	opts  RowsOptions

	part    io.ReadCloser
	decoder *xml.Decoder

	state     decodeState
	cur       *Row // row being accumulated
	row       *Row // last emitted row
	cell      cellContext
	text      strings.Builder
	cellCount int
	lastRow   int

	err    error
	closed bool
}

// Next advances to the next row. It returns false when the stream ends or
// fails; Err tells the two apart. The underlying part handle is released
// before Next returns false.
func (it *RowIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	for {
		tok, err := it.decoder.Token()
		if err == io.EOF {
			it.release(nil)
			return false
		}
		if err != nil {
			it.release(err)
			return false
		}
		emitted := false
		switch t := tok.(type) {
		case xml.StartElement:
			it.startElement(t)
		case xml.EndElement:
			emitted = it.endElement(t)
		case xml.CharData:
			if it.state == stateInValue {
				it.text.Write(t)
			}
		}
		if it.err != nil {
			it.release(it.err)
			return false
		}
		if emitted {
			return true
		}
	}
}

// Row returns the row produced by the last successful Next.
func (it *RowIterator) Row() *Row {
	return it.row
}

// Err returns the first error encountered during iteration, or nil when
// the stream ended cleanly.
func (it *RowIterator) Err() error {
	return it.err
}

// Close releases the underlying part handle early. It is safe to call
// more than once and after iteration has finished.
func (it *RowIterator) Close() error {
	if it.part == nil {
		it.closed = true
		return nil
	}
	part := it.part
	it.part = nil
	it.closed = true
	return part.Close()
}

func (it *RowIterator) release(err error) {
	if err != nil {
		it.err = err
	}
	if it.part != nil {
		cerr := it.part.Close()
		if it.err == nil && cerr != nil {
			it.err = cerr
		}
		it.part = nil
	}
	it.closed = true
}

func (it *RowIterator) startElement(t xml.StartElement) {
	switch t.Name.Local {
	case "row":
		it.state = stateInRow
		it.cur = it.newRow(t)
		it.cellCount = 0
	case "c":
		if it.state != stateInRow {
			return
		}
		it.state = stateInCell
		it.cell = cellContext{open: true, styleID: -1, colx: it.cellCount}
		it.cellCount++
		it.text.Reset()
		for _, attr := range t.Attr {
			switch attr.Name.Local {
			case "t":
				it.cell.typ = attr.Value
			case "s":
				if id, err := strconv.Atoi(attr.Value); err == nil {
					it.cell.styleID = id
				}
			case "r":
				it.cell.ref = attr.Value
			}
		}
	case "v", "t":
		// A value element with no open cell means the parser has not
		// established cell context yet; ignore it.
		if it.state == stateInCell && it.cell.open {
			it.state = stateInValue
		}
	case "rPh", "phoneticPr":
		// Phonetic runs inside inline strings are not cell text.
		if it.state == stateInCell || it.state == stateInValue {
			if err := it.decoder.Skip(); err != nil {
				it.err = err
			}
		}
	}
}

func (it *RowIterator) endElement(t xml.EndElement) bool {
	switch t.Name.Local {
	case "row":
		if it.cur == nil {
			return false
		}
		it.state = stateIdle
		it.row = it.shape(it.cur)
		it.cur = nil
		return true
	case "c":
		if it.state == stateInCell || it.state == stateInValue {
			it.state = stateInRow
			it.cell = cellContext{}
			it.text.Reset()
		}
	case "v", "t":
		if it.state == stateInValue {
			it.resolveValue()
			// Inline strings may carry further text fragments; stay on
			// the cell so they accumulate into the same value.
			it.state = stateInCell
		}
	}
	return false
}

// newRow builds the accumulating row from the row element's attributes.
// A declared span pre-sizes the cell storage; otherwise storage grows as
// out-of-range column indices are stored.
func (it *RowIterator) newRow(t xml.StartElement) *Row {
	row := &Row{}
	var spans string
	for _, attr := range t.Attr {
		switch attr.Name.Local {
		case "r":
			row.Number, _ = strconv.Atoi(attr.Value)
		case "spans":
			spans = attr.Value
		case "collapsed":
			row.Collapsed = xmlBool(attr.Value)
		case "customFormat":
			row.CustomFormat = xmlBool(attr.Value)
		case "customHeight":
			row.CustomHeight = xmlBool(attr.Value)
		case "ht":
			row.Height, _ = strconv.ParseFloat(attr.Value, 64)
		case "outlineLevel":
			row.OutlineLevel, _ = strconv.Atoi(attr.Value)
		case "hidden":
			row.Hidden = xmlBool(attr.Value)
		}
	}
	if row.Number == 0 {
		row.Number = it.lastRow + 1
	}
	it.lastRow = row.Number
	if spans != "" {
		if _, end, ok := strings.Cut(spans, ":"); ok {
			if n, err := strconv.Atoi(end); err == nil && n > 0 && n <= MaxColumns {
				row.Cells = make([]interface{}, n)
			}
		}
	}
	return row
}

// resolveValue converts the accumulated text and stores it at the column
// implied by the cell's own reference, not by event order.
func (it *RowIterator) resolveValue() {
	colx := it.cell.colx
	if it.cell.ref != "" {
		var err error
		colx, err = cellColumn(it.cell.ref, strconv.Itoa(it.cur.Number))
		if err != nil {
			it.err = err
			return
		}
	}
	value, err := it.sheet.book.converter.convert(it.text.String(), it.cell.typ, it.cell.styleID)
	if err != nil {
		it.err = err
		return
	}
	it.cur.setCell(colx, value)
}

// shape applies header-mode and metadata output policy to a finished row.
func (it *RowIterator) shape(row *Row) *Row {
	if it.opts.Headers {
		row.IsHeaderRow = row.Number == it.opts.HeaderRowNumber
		if headers := it.sheet.headers; len(headers) > 0 {
			mapped := make(map[string]interface{})
			if !row.allEmpty() {
				n := len(headers)
				if len(row.Cells) < n {
					n = len(row.Cells)
				}
				for i := 0; i < n; i++ {
					mapped[headerKey(headers[i])] = row.Cells[i]
				}
			}
			row.ByHeader = mapped
			row.Cells = nil
		}
	}
	if !it.opts.Metadata {
		*row = Row{Cells: row.Cells, ByHeader: row.ByHeader}
	}
	return row
}

func headerKey(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func xmlBool(v string) bool {
	return v == "1" || v == "true"
}
