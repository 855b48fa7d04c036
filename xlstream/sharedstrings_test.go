package xlstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSharedStrings(t *testing.T) {
	table, err := parseSharedStrings(strings.NewReader(fixtureSharedStringsXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "Hello World", "東京", " spaced "}, table)
}

func TestParseSharedStringsOrderPreserving(t *testing.T) {
	const src = `<sst><si><t>z</t></si><si><t>a</t></si><si><t>m</t></si></sst>`
	table, err := parseSharedStrings(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, table)
}

func TestParseSharedStringsEmptyItem(t *testing.T) {
	const src = `<sst><si><t/></si><si><t>x</t></si></sst>`
	table, err := parseSharedStrings(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"", "x"}, table)
}

func TestLoadSharedStringsMissingPart(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml": fixtureWorkbookXML,
	})
	table, err := loadSharedStrings(a)
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestParseSharedStringsMalformed(t *testing.T) {
	_, err := parseSharedStrings(strings.NewReader(`<sst><si><t>a`))
	require.Error(t, err)
}
