package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_GetSet(t *testing.T) {
	var r Record
	for _, col := range []string{
		ColumnSymbol, ColumnSecurity, ColumnCountry, ColumnGICSSector,
		ColumnGICSSubIndustry, ColumnWikipediaTitle, ColumnWikipediaPage, ColumnCategories,
	} {
		require.NoError(t, r.Set(col, col+"-value"))
		got, err := r.Get(col)
		require.NoError(t, err)
		assert.Equal(t, col+"-value", got)
	}
}

func TestRecord_UnknownColumn(t *testing.T) {
	var r Record
	_, err := r.Get("price")
	assert.Error(t, err)
	assert.Error(t, r.Set("price", "1"))
	assert.False(t, IsKnownColumn("price"))
	assert.True(t, IsKnownColumn(ColumnCategories))
}

func TestTable_AddColumnKeepsFilledValues(t *testing.T) {
	tbl := NewTable(RawColumns)
	tbl.Records = []Record{{Symbol: "AAPL"}}
	tbl.AddColumn(ColumnWikipediaTitle)
	tbl.Records[0].WikipediaTitle = "Apple Inc."

	tbl.AddColumn(ColumnWikipediaTitle)

	assert.Equal(t, "Apple Inc.", tbl.Records[0].WikipediaTitle)
	assert.Equal(t, append(RawColumns, ColumnWikipediaTitle), tbl.Columns)
}

func TestTable_Project(t *testing.T) {
	tbl := NewTable(append(RawColumns, ColumnWikipediaTitle, ColumnWikipediaPage, ColumnCategories))
	tbl.Records = []Record{{Symbol: "MSFT", WikipediaPage: "markup", Categories: `["Tech"]`}}

	tbl.Project(ExpectedColumns)

	assert.Equal(t, ExpectedColumns, tbl.Columns)
	assert.Empty(t, tbl.Records[0].WikipediaPage)
	assert.Equal(t, `["Tech"]`, tbl.Records[0].Categories)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := NewTable(RawColumns)
	tbl.Records = []Record{{Symbol: "IBM"}}

	c := tbl.Clone()
	c.Records[0].Symbol = "XOM"
	c.Columns[0] = "changed"

	assert.Equal(t, "IBM", tbl.Records[0].Symbol)
	assert.Equal(t, ColumnSymbol, tbl.Columns[0])
}

func TestTable_CountFilled(t *testing.T) {
	tbl := NewTable(RawColumns)
	tbl.Records = []Record{{WikipediaTitle: "A"}, {}, {WikipediaTitle: "B"}}
	assert.Equal(t, 2, tbl.CountFilled(ColumnWikipediaTitle))
	assert.Equal(t, 0, tbl.CountFilled("unknown"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeSymbol("  brk.b "))
}
