package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiver(t *testing.T) {
	tempDir := t.TempDir()
	archiver := NewArchiver(tempDir)
	archiver.now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) }

	t.Run("SaveUpload stores the file under a dated directory", func(t *testing.T) {
		name, err := archiver.SaveUpload("agenda janeiro.xlsx", []byte("content"))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(name, "2025-01-15"+string(filepath.Separator)))
		assert.True(t, strings.HasSuffix(name, "-agenda_janeiro.xlsx"))

		content, err := os.ReadFile(filepath.Join(tempDir, name))
		require.NoError(t, err)
		assert.Equal(t, "content", string(content))
	})

	t.Run("SaveUpload generates unique names", func(t *testing.T) {
		first, err := archiver.SaveUpload("agenda.csv", []byte("a"))
		require.NoError(t, err)
		second, err := archiver.SaveUpload("agenda.csv", []byte("b"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("SaveUpload strips directories from the client name", func(t *testing.T) {
		name, err := archiver.SaveUpload("../../etc/passwd", []byte("x"))
		require.NoError(t, err)

		assert.Equal(t, "2025-01-15", filepath.Dir(name))
		assert.True(t, strings.HasSuffix(name, "-passwd"))
	})
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "agenda.csv", safeName("agenda.csv"))
	assert.Equal(t, "agenda.xls", safeName(`C:\Users\lab\agenda.xls`))
	assert.Equal(t, "Agenda_S_o_Paulo.xlsx", safeName("Agenda São Paulo.xlsx"))
	assert.Equal(t, "upload", safeName(".."))
}
