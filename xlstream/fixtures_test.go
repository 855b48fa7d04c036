package xlstream

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureWorkbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>
<sheet name="Sheet1" sheetId="1" r:id="rId1"/>
<sheet name="Secrets" sheetId="2" state="hidden" r:id="rId2"/>
</sheets>
</workbook>`

const fixtureRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet2.xml"/>
<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const fixtureSharedStringsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="4" uniqueCount="4">
<si><t>alpha</t></si>
<si><r><t>Hello </t></r><r><t>World</t></r></si>
<si><t>東京</t><rPh sb="0" eb="2"><t>トウキョウ</t></rPh><phoneticPr fontId="1"/></si>
<si><t xml:space="preserve"> spaced </t></si>
</sst>`

// Style ids: 0 General, 1 date, 2 date-time, 3 text, 4 custom percentage,
// 5 scientific.
const fixtureStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<numFmts count="1">
<numFmt numFmtId="164" formatCode="0.0000%"/>
</numFmts>
<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>
<cellXfs count="6">
<xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="14" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="22" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="49" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="164" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="11" fontId="0" fillId="0" borderId="0" xfId="0"/>
</cellXfs>
</styleSheet>`

const fixtureSheet1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<dimension ref="A1:C2"/>
<sheetData>
<row r="1" spans="1:3"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="n"><v>3.5</v></c></row>
<row r="2" spans="1:3"><c r="A2" t="inlineStr"><is><t>inline</t></is></c><c r="C2" t="b"><v>1</v></c></row>
</sheetData>
</worksheet>`

const fixtureSheet2XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>2</v></c></row>
</sheetData>
</worksheet>`

func defaultParts() map[string]string {
	return map[string]string{
		"xl/workbook.xml":            fixtureWorkbookXML,
		"xl/_rels/workbook.xml.rels": fixtureRelsXML,
		"xl/sharedStrings.xml":       fixtureSharedStringsXML,
		"xl/styles.xml":              fixtureStylesXML,
		"xl/worksheets/sheet1.xml":   fixtureSheet1XML,
		"xl/worksheets/sheet2.xml":   fixtureSheet2XML,
	}
}

// zipBytes assembles an in-memory container from part name to body pairs.
func zipBytes(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildArchive(t *testing.T, parts map[string]string) *zipArchive {
	t.Helper()
	data := zipBytes(t, parts)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return newZipArchive(zr, nil)
}

// openTestBook builds a Book over the default fixture parts. Overrides
// replace parts by name; an empty body removes the part.
func openTestBook(t *testing.T, overrides map[string]string) *Book {
	t.Helper()
	parts := defaultParts()
	for name, body := range overrides {
		if body == "" {
			delete(parts, name)
		} else {
			parts[name] = body
		}
	}
	book, err := NewBook(buildArchive(t, parts))
	require.NoError(t, err)
	return book
}

// countingArchive wraps another Archive and tracks open part handles, so
// tests can observe that traversals release what they acquire.
type countingArchive struct {
	Archive
	opened int
	closed int
}

func (a *countingArchive) OpenPart(name string) (io.ReadCloser, error) {
	rc, err := a.Archive.OpenPart(name)
	if err != nil {
		return nil, err
	}
	a.opened++
	return &countingReadCloser{ReadCloser: rc, archive: a}, nil
}

type countingReadCloser struct {
	io.ReadCloser
	archive *countingArchive
	done    bool
}

func (c *countingReadCloser) Close() error {
	if !c.done {
		c.done = true
		c.archive.closed++
	}
	return c.ReadCloser.Close()
}
