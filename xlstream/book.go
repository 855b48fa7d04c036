// Package xlstream reads .xlsx workbooks as lazy row streams. Sheets are
// decoded one row at a time directly from the container's XML parts, so
// very large workbooks never need to fit in memory.
package xlstream

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

const (
	workbookPath     = "xl/workbook.xml"
	workbookRelsPath = "xl/_rels/workbook.xml.rels"
)

// Book represents the contents of an open workbook document. It owns the
// shared-string and style tables, which are built once on open and
// read-only afterwards; independent sheet traversals may share them
// concurrently.
type Book struct {
	archive   Archive
	sheets    []*Sheet
	date1904  bool
	converter *converter
}

// Open opens the workbook file at path.
func Open(path string) (*Book, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	b, err := NewBook(newZipArchive(&z.Reader, z))
	if err != nil {
		z.Close()
		return nil, err
	}
	return b, nil
}

// OpenReader opens a workbook from an in-memory or seekable source.
func OpenReader(r io.ReaderAt, size int64) (*Book, error) {
	z, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return NewBook(newZipArchive(z, nil))
}

// NewBook builds a Book over an already-open container. Most callers use
// Open or OpenReader instead; this entry point exists so tests and
// embedders can supply their own Archive.
func NewBook(a Archive) (*Book, error) {
	b := &Book{archive: a}
	if err := b.loadWorkbook(); err != nil {
		return nil, err
	}
	sst, err := loadSharedStrings(a)
	if err != nil {
		return nil, err
	}
	styles, err := loadStyles(a)
	if err != nil {
		return nil, err
	}
	b.converter = &converter{sharedStrings: sst, styles: styles, date1904: b.date1904}
	return b, nil
}

// Close releases the underlying container, when the Book owns one.
// Iterators still open on the book's sheets must not be used afterwards.
func (b *Book) Close() error {
	if c, ok := b.archive.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SheetNames returns the names of all sheets in workbook order.
func (b *Book) SheetNames() []string {
	names := make([]string, len(b.sheets))
	for i, s := range b.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheets returns all sheets in workbook order.
func (b *Book) Sheets() []*Sheet {
	return b.sheets
}

// SheetByIndex returns a sheet by its zero-based position.
func (b *Book) SheetByIndex(sheetx int) (*Sheet, error) {
	if sheetx < 0 || sheetx >= len(b.sheets) {
		return nil, NewXLSXError("sheet index %d out of range", sheetx)
	}
	return b.sheets[sheetx], nil
}

// SheetByName returns a sheet by its name.
func (b *Book) SheetByName(sheetName string) (*Sheet, error) {
	for _, s := range b.sheets {
		if s.Name == sheetName {
			return s, nil
		}
	}
	return nil, NewXLSXError("no sheet named <%s>", sheetName)
}

type xmlWorkbook struct {
	WorkbookPr struct {
		Date1904 bool `xml:"date1904,attr"`
	} `xml:"workbookPr"`
	Sheets struct {
		Sheet []struct {
			Name    string `xml:"name,attr"`
			SheetID string `xml:"sheetId,attr"`
			State   string `xml:"state,attr"`
			ID      string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlRelationships struct {
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func (b *Book) loadWorkbook() error {
	rc, err := b.archive.OpenPart(workbookPath)
	if err != nil {
		return NewXLSXError("not a spreadsheet document: %v", err)
	}
	defer rc.Close()

	var wb xmlWorkbook
	if err := xml.NewDecoder(rc).Decode(&wb); err != nil {
		return NewXLSXError("parsing %s: %v", workbookPath, err)
	}
	b.date1904 = wb.WorkbookPr.Date1904

	rels, err := b.loadRelationships()
	if err != nil {
		return err
	}
	for _, s := range wb.Sheets.Sheet {
		path := rels[s.ID]
		if path == "" {
			// No relationship entry; fall back to the conventional
			// location keyed by sheetId.
			path = "worksheets/sheet" + s.SheetID + ".xml"
		}
		b.sheets = append(b.sheets, &Sheet{
			book:  b,
			Name:  s.Name,
			State: s.State,
			path:  sheetPartName(path),
			rid:   s.ID,
		})
	}
	return nil
}

// loadRelationships maps workbook relationship ids to part targets. A
// document without the rels part yields an empty map.
func (b *Book) loadRelationships() (map[string]string, error) {
	rels := make(map[string]string)
	if !b.archive.PartExists(workbookRelsPath) {
		return rels, nil
	}
	rc, err := b.archive.OpenPart(workbookRelsPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var doc xmlRelationships
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, NewXLSXError("parsing %s: %v", workbookRelsPath, err)
	}
	for _, r := range doc.Relationship {
		rels[r.ID] = r.Target
	}
	return rels, nil
}

// sheetPartName normalizes a relationship target to a container part
// name. Targets are workbook-relative ("worksheets/sheet1.xml") but some
// writers emit them already prefixed or absolute.
func sheetPartName(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return "xl/" + target
}
