package xlstream

import (
	"encoding/xml"
	"io"
	"strings"
)

const sharedStringsPath = "xl/sharedStrings.xml"

// loadSharedStrings reads the shared-string part into an ordered table.
// The string at position k is referenced by cells as index k. A document
// without the part yields an empty table.
func loadSharedStrings(a Archive) ([]string, error) {
	if !a.PartExists(sharedStringsPath) {
		return nil, nil
	}
	rc, err := a.OpenPart(sharedStringsPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseSharedStrings(rc)
}

func parseSharedStrings(r io.Reader) ([]string, error) {
	var (
		table []string
		item  strings.Builder
		inSI  bool
		inT   bool
	)
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
			case "si":
				inSI = true
				item.Reset()
			case "t":
				if inSI {
					inT = true
				}
			case "rPh", "phoneticPr":
				// Phonetic runs carry their own <t> elements that are
				// not part of the string value.
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				if inSI {
					table = append(table, item.String())
				}
				inSI = false
			}
		case xml.CharData:
			if inT {
				item.Write(t)
			}
		}
	}
	return table, nil
}
