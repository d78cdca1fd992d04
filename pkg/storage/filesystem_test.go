package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.SaveStream("resumes/u1/cv.pdf", strings.NewReader("pdf-bytes"), 100)
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)

	f, err := store.Open("resumes/u1/cv.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "pdf-bytes", string(body))

	require.NoError(t, store.Delete("resumes/u1/cv.pdf"))
	require.NoError(t, store.Delete("resumes/u1/cv.pdf"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidKey)
	_, err = store.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorageEnforcesLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("big.bin", strings.NewReader("0123456789"), 5)
	require.ErrorIs(t, err, ErrObjectTooLarge)
	_, statErr := os.Stat(filepath.Join(dir, "big.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("exports/old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("exports/new.csv", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "exports", "old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/old.csv"}, deleted)
}
