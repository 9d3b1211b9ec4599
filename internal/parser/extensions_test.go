package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merger-tool/merger/internal/parser"
)

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: ".txt", want: ".txt"},
		{in: ".TAR.GZ", want: ".tar.gz"},
		{in: ".c9", want: ".c9"},
		{in: "txt", wantErr: true},
		{in: ".", wantErr: true},
		{in: "", wantErr: true},
		{in: ".has space", wantErr: true},
		{in: ".tar_gz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parser.NormalizeExtension(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtensionSetDeduplicates(t *testing.T) {
	set, err := parser.NewExtensionSet(".txt", ".TXT", ".md")
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{".txt", ".md"}, set.Slice())
}

func TestExtensionSetRejectsInvalid(t *testing.T) {
	_, err := parser.NewExtensionSet(".txt", "bad")
	assert.Error(t, err)
}

func TestExtensionSetIntersect(t *testing.T) {
	a, err := parser.NewExtensionSet(".txt", ".md", ".rst")
	require.NoError(t, err)
	b, err := parser.NewExtensionSet(".md", ".adoc", ".txt")
	require.NoError(t, err)

	assert.Equal(t, []string{".md", ".txt"}, a.Intersect(b))

	c, err := parser.NewExtensionSet(".pdf")
	require.NoError(t, err)
	assert.Empty(t, a.Intersect(c))
}

func TestExtensionSetMatches(t *testing.T) {
	set, err := parser.NewExtensionSet(".tar.gz", ".txt")
	require.NoError(t, err)

	assert.True(t, set.Matches("notes.txt"))
	assert.True(t, set.Matches("NOTES.TXT"))
	assert.True(t, set.Matches("backup.tar.gz"))
	assert.True(t, set.Matches("backup.TAR.Gz"))
	assert.False(t, set.Matches("archive.gz"))
	assert.False(t, set.Matches("txt"))
	assert.False(t, set.Matches("noextension"))
}

func TestExtensionSetSliceIsCopy(t *testing.T) {
	set, err := parser.NewExtensionSet(".txt")
	require.NoError(t, err)

	s := set.Slice()
	s[0] = ".hacked"
	assert.Equal(t, []string{".txt"}, set.Slice())
}
