package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teiEntries() []Entry {
	return []Entry{
		{Name: "p", FullName: "paragraph", Documentation: "(paragraph) marks paragraphs in prose."},
		{Name: "persName", FullName: "personal name", Documentation: "(personal name) contains a proper noun referring to a person."},
		{Name: "placeName", FullName: "place name", Documentation: "(place name) contains an absolute or relative place name."},
		{Name: "date", FullName: "date", Documentation: "(date) contains a date in any format."},
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "personal name contains", Normalize("(Personal  Name) -- contains"))
	assert.Equal(t, "author's", Normalize("Author’s"))
	assert.Equal(t, "", Normalize(" ... "))
}

func TestTokenizeDropsStopwords(t *testing.T) {
	isStop, err := Stopwords("en")
	require.NoError(t, err)

	terms := Tokenize("the paragraph of the prose, paragraph", isStop)
	assert.Equal(t, []string{"paragraph", "prose"}, terms)
}

func TestSearchRanking(t *testing.T) {
	ix := NewIndex(teiEntries(), nil)
	assert.Equal(t, 4, ix.Len())

	hits := ix.Search("place name", 0)
	require.NotEmpty(t, hits)
	assert.Equal(t, "placeName", hits[0].Entry.Name, "both terms and both in the name")
	assert.Equal(t, 2, hits[0].Score.Terms)
	assert.Equal(t, 2, hits[0].Score.NameHits)

	var names []string
	for _, h := range hits {
		names = append(names, h.Entry.Name)
	}
	assert.Contains(t, names, "persName")
	assert.NotContains(t, names, "p")
	assert.NotContains(t, names, "date")

	limited := ix.Search("place name", 1)
	assert.Len(t, limited, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	isStop, err := Stopwords("en")
	require.NoError(t, err)
	ix := NewIndex(teiEntries(), isStop)

	assert.Nil(t, ix.Search("the of and", 0))
	assert.Nil(t, ix.Compile(""))
}

func TestQuerySubstring(t *testing.T) {
	q := Compile("pers", nil)
	require.NotNil(t, q)
	assert.Equal(t, []string{"pers"}, q.Terms())

	s := q.Score(Entry{Name: "persName"})
	assert.True(t, s.Matched())
	assert.Equal(t, 1, s.NameHits)
	assert.False(t, q.Score(Entry{Name: "date"}).Matched())
}
