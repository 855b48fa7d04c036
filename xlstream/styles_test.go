package xlstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyles(t *testing.T) {
	st, err := parseStyles(strings.NewReader(fixtureStylesXML))
	require.NoError(t, err)
	want := []Category{
		CategoryUnsupported,
		CategoryDate,
		CategoryDateTime,
		CategoryString,
		CategoryPercentage,
		CategoryBigDecimal,
	}
	require.Len(t, st.categories, len(want))
	for i, cat := range want {
		assert.Equal(t, cat, st.category(i), "style id %d", i)
	}
}

func TestStyleTableUnknownID(t *testing.T) {
	st := &styleTable{categories: []Category{CategoryDate}}
	assert.Equal(t, CategoryNone, st.category(-1))
	assert.Equal(t, CategoryNone, st.category(1))

	var nilTable *styleTable
	assert.Equal(t, CategoryNone, nilTable.category(0))
}

func TestLoadStylesMissingPart(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml": fixtureWorkbookXML,
	})
	st, err := loadStyles(a)
	require.NoError(t, err)
	assert.Equal(t, CategoryNone, st.category(0))
}

func TestClassifyFormatCode(t *testing.T) {
	cases := []struct {
		code string
		want Category
	}{
		{"", CategoryUnsupported},
		{"General", CategoryUnsupported},
		{"general", CategoryUnsupported},
		{"0.00", CategoryNumber},
		{"#,##0", CategoryNumber},
		{"# ?/?", CategoryNumber},
		{"[Red]0", CategoryNumber},
		{`"Total: "0.00`, CategoryNumber},
		{"0%", CategoryPercentage},
		{"0.0000%", CategoryPercentage},
		{"0.00E+00", CategoryBigDecimal},
		{"##0.0e-0", CategoryBigDecimal},
		{"@", CategoryString},
		{"yyyy-mm-dd", CategoryDate},
		{"d-mmm-yy", CategoryDate},
		{"mmm", CategoryDate},
		{"hh:mm", CategoryTime},
		{"mm:ss", CategoryTime},
		{`[$-409]h:mm AM/PM`, CategoryTime},
		{"[h]:mm:ss", CategoryTime},
		{"yyyy-mm-dd hh:mm", CategoryDateTime},
		{"m/d/yy h:mm", CategoryDateTime},
		{`"year"`, CategoryUnsupported},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classifyFormatCode(c.code), "code %q", c.code)
	}
}
