package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/you/emrsvc/domain"
)

// AllowedExtensions is the upload allow list
var AllowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"pdf": true, "doc": true, "docx": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// LocalStore implements domain.FileStore on the local filesystem
type LocalStore struct {
	root     string
	maxBytes int64
	urlBase  string
}

// NewLocalStore creates the upload root if needed
func NewLocalStore(root string, maxBytes int64) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: abs, maxBytes: maxBytes, urlBase: "/api/files"}, nil
}

// SecureFilename reduces a client supplied name to a safe ASCII file name
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Extension returns the lower-cased extension without the dot
func Extension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Save implements domain.FileStore
func (s *LocalStore) Save(folder, originalName string, r io.Reader) (*domain.StoredFile, error) {
	name := SecureFilename(originalName)
	if name == "" {
		return nil, domain.ErrNoFile
	}
	if !AllowedExtensions[Extension(name)] {
		return nil, domain.ErrFileType
	}

	folder = SecureFilename(folder)
	if folder == "" {
		folder = "uploads"
	}
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	unique := uuid.NewString() + "_" + name
	full := filepath.Join(dir, unique)
	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	sniffed := http.DetectContentType(head)

	n, err := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxBytes {
		err = domain.ErrFileTooLarge
	}
	if err != nil {
		os.Remove(full)
		return nil, err
	}

	mimeType := mime.TypeByExtension("." + Extension(name))
	if mimeType == "" {
		mimeType = sniffed
	}

	return &domain.StoredFile{
		URL:          path.Join(s.urlBase, folder, unique),
		Filename:     unique,
		OriginalName: name,
		Size:         n,
		MimeType:     mimeType,
	}, nil
}

// Resolve implements domain.FileStore. The result always lies inside the upload root.
func (s *LocalStore) Resolve(relPath string) (string, error) {
	rel := strings.TrimPrefix(relPath, "/")
	if rel == "" {
		return "", domain.ErrFilePathInvalid
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(s.root, full)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", domain.ErrFilePathInvalid
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrFileNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", domain.ErrFileNotFound
	}
	return full, nil
}

// Delete implements domain.FileStore
func (s *LocalStore) Delete(relPath string) error {
	full, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}
