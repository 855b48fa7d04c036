package xlstream

import "strings"

// MaxColumns is the column capacity of a worksheet (A..XFD).
const MaxColumns = 16384

// letterTable maps every valid column index to its letter form. It is
// built once at package init and read-only afterwards, so it may be shared
// freely across traversals.
var letterTable = buildLetterTable()

func buildLetterTable() []string {
	table := make([]string, MaxColumns)
	for i := range table {
		table[i] = formatLetters(i)
	}
	return table
}

// formatLetters renders a zero-based column index in bijective base-26:
// digits A=1..Z=26, no zero digit.
func formatLetters(colx int) string {
	var buf [3]byte
	n := len(buf)
	for v := colx + 1; v > 0; {
		v--
		n--
		buf[n] = byte('A' + v%26)
		v /= 26
	}
	return string(buf[n:])
}

// IndexToLetters converts a zero-based column index to its spreadsheet
// letter form: 0 -> "A", 25 -> "Z", 26 -> "AA", 16383 -> "XFD".
func IndexToLetters(colx int) (string, error) {
	if colx < 0 || colx >= MaxColumns {
		return "", NewOutOfRangeError("column index %d out of range [0, %d]", colx, MaxColumns-1)
	}
	return letterTable[colx], nil
}

// LettersToIndex converts an uppercase column letter string to its
// zero-based index. It is the inverse of IndexToLetters.
func LettersToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, NewOutOfRangeError("empty column letters")
	}
	colx := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return 0, NewOutOfRangeError("invalid column letter %q in %q", c, letters)
		}
		colx = colx*26 + int(c-'A'+1)
	}
	colx--
	if colx >= MaxColumns {
		return 0, NewOutOfRangeError("column %q out of range (max %q)", letters, letterTable[MaxColumns-1])
	}
	return colx, nil
}

// cellColumn resolves the zero-based column index of a cell reference such
// as "B12". rowNum is the decimal row number the cell belongs to; a
// reference whose numeric suffix disagrees with it is rejected rather than
// guessed at.
func cellColumn(ref, rowNum string) (int, error) {
	letters, ok := strings.CutSuffix(ref, rowNum)
	if !ok || letters == "" {
		return 0, NewAmbiguousRefError("cell reference %q does not match row %s", ref, rowNum)
	}
	return LettersToIndex(letters)
}
