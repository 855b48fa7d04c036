package xlstream

// Row is one decoded worksheet row.
//
// Cells is index-aligned to column position: index 0 is column A. Cells
// the document leaves out stay nil; values are never shifted left to fill
// gaps. In header mode with a non-empty header set, ByHeader carries the
// row instead and Cells is nil.
type Row struct {
	// Number is the 1-based row number declared by the sheet. Zero
	// unless metadata output was requested.
	Number int

	// Layout attributes reproduced verbatim from the row element.
	// Populated only when metadata output was requested.
	Collapsed    bool
	CustomFormat bool
	CustomHeight bool
	Height       float64
	OutlineLevel int
	Hidden       bool

	// IsHeaderRow marks the row whose number equals the configured
	// header row number. Set only in header mode with metadata output.
	IsHeaderRow bool

	// Cells holds the row's values in column order.
	Cells []interface{}

	// ByHeader maps header labels to this row's values, zipped to the
	// shorter of the two sequences. A row with no values at all maps to
	// an empty (non-nil) map.
	ByHeader map[string]interface{}
}

// setCell stores v at column index colx, growing the storage as needed.
func (r *Row) setCell(colx int, v interface{}) {
	for colx >= len(r.Cells) {
		r.Cells = append(r.Cells, nil)
	}
	r.Cells[colx] = v
}

func (r *Row) allEmpty() bool {
	for _, v := range r.Cells {
		if v != nil {
			return false
		}
	}
	return true
}
