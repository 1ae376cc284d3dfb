package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"a.cue", "nested/b.cue", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package x\n"), 0644))
	}

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "nested", "b.cue"),
	}, files)
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(writeCatalog(t))
	require.NoError(t, err)
	assert.Len(t, cat.Tables(), 4)
	assert.Equal(t, []string{
		"  addresses: 3 column(s), 0 join(s)",
		"  authors: 4 column(s), 2 join(s)",
		"  books: 6 column(s), 2 join(s)",
		"  reviews: 4 column(s), 1 join(s)",
	}, catalogSummary(cat))
}

func TestLoadCatalogNotADirectory(t *testing.T) {
	file := writeDocument(t, "x.cue", "package x\n")

	_, err := LoadCatalog(file)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not a directory")
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(writeDocument(t, "q.yaml", longestDoc))
	require.NoError(t, err)
	assert.Equal(t, "books", doc.From)

	_, err = LoadDocument(writeDocument(t, "bad.yaml", "from: [books\n"))
	code, message := loadErrorParts(err)
	assert.Equal(t, ErrCodeDocument, code)
	assert.Contains(t, message, "invalid query document")
}

func TestLoadErrorString(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())

	code, message := loadErrorParts(errors.New("boom"))
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Equal(t, "boom", message)
}
