// Package media stores uploaded client documents on the filesystem.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not PDF, JPEG or PNG.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowed = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// sniffLen is how many leading bytes are inspected to detect the type.
const sniffLen = 3072

type Store struct {
	root    string
	baseURL string
}

func NewStore(root, baseURL string) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{root: root, baseURL: baseURL}
}

// DocumentKey builds the storage key of a client document.
func DocumentKey(dossierID, requirementID int, ext string) string {
	return fmt.Sprintf("clients/docs/%d/%d/%s%s", dossierID, requirementID, uuid.NewString(), ext)
}

// Detect returns the MIME type and canonical extension of head, or
// ErrUnsupportedType.
func Detect(head []byte) (string, string, error) {
	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowed[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return mt.String(), "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// CheckUpload reports ErrUnsupportedType when the uploaded file is not a
// PDF, JPEG or PNG. Nothing is written.
func CheckUpload(fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	head, err := readHead(src)
	if err != nil {
		return err
	}
	_, _, err = Detect(head)
	return err
}

// SaveUpload writes the uploaded file for the dossier and requirement and
// returns its key.
func (s *Store) SaveUpload(dossierID, requirementID int, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head, err := readHead(src)
	if err != nil {
		return "", err
	}
	_, ext, err := Detect(head)
	if err != nil {
		return "", err
	}

	key := DocumentKey(dossierID, requirementID, ext)
	if err := s.Save(key, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		return "", err
	}
	return key, nil
}

func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// Save copies r to key under the media root.
func (s *Store) Save(key string, r io.Reader) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	dst, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(full)
		return err
	}
	return dst.Close()
}

// Remove deletes the file stored at key. A missing file is not an error.
func (s *Store) Remove(key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + key
}

func (s *Store) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
