package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/emrsvc/domain"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"My Scan 01.PNG", "My_Scan_01.PNG"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\x\photo.jpg`, "C_Users_x_photo.jpg"},
		{"..", ""},
		{"résumé.doc", "rsum.doc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SecureFilename(tt.in), tt.in)
	}
}

func TestLocalStore_SaveResolveDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)

	f, err := store.Save("", "chest xray.png", strings.NewReader("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(f.Filename, "_chest_xray.png"))
	assert.Len(t, f.Filename, 36+1+len("chest_xray.png"))
	assert.Equal(t, "/api/files/uploads/"+f.Filename, f.URL)
	assert.Equal(t, "chest_xray.png", f.OriginalName)
	assert.Equal(t, int64(12), f.Size)
	assert.Equal(t, "image/png", f.MimeType)

	full, err := store.Resolve("uploads/" + f.Filename)
	require.NoError(t, err)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\nrest", string(data))

	require.NoError(t, store.Delete("/uploads/"+f.Filename))
	_, err = store.Resolve("uploads/" + f.Filename)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.ErrorIs(t, store.Delete("uploads/"+f.Filename), domain.ErrFileNotFound)
}

func TestLocalStore_SaveRejects(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, 8)
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		body    []byte
		wantErr error
	}{
		{"no name", "", []byte("x"), domain.ErrNoFile},
		{"executable", "run.exe", []byte("x"), domain.ErrFileType},
		{"no extension", "README", []byte("x"), domain.ErrFileType},
		{"too large", "big.pdf", bytes.Repeat([]byte("a"), 9), domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save("docs", tt.file, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	entries, _ := os.ReadDir(filepath.Join(root, "docs"))
	assert.Empty(t, entries, "rejected uploads leave nothing behind")
}

func TestLocalStore_FolderIsSanitized(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, 1024)
	require.NoError(t, err)

	f, err := store.Save("../../outside", "a.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.URL, "/api/files/outside/"))
	_, err = os.Stat(filepath.Join(root, "outside", f.Filename))
	assert.NoError(t, err)
}

func TestLocalStore_ResolveTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "uploads"), 1024)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("s"), 0o600))

	for _, p := range []string{"../secret.txt", "a/../../secret.txt", "", "/", ".."} {
		_, err := store.Resolve(p)
		assert.ErrorIs(t, err, domain.ErrFilePathInvalid, p)
	}
}
