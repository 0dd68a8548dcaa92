package storage

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ImageStore persists medicine image files under a per-medicine directory.
// The filesystem is abstracted so tests run against an in-memory fs.
type ImageStore struct {
	fs   afero.Fs
	root string
}

func NewImageStore(fs afero.Fs, root string) *ImageStore {
	return &ImageStore{fs: fs, root: root}
}

func NewLocalImageStore(root string) *ImageStore {
	return NewImageStore(afero.NewOsFs(), root)
}

// Save writes the file under medicines/<medicineID>/<uuid><ext> and returns
// the relative path stored on the image record.
func (s *ImageStore) Save(medicineID int64, originalName string, r io.Reader) (string, error) {
	rel := path.Join("medicines", fmt.Sprintf("%d", medicineID), uuid.NewString()+path.Ext(originalName))
	full := path.Join(s.root, rel)

	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	f, err := s.fs.Create(full)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return rel, nil
}

func (s *ImageStore) Open(rel string) (afero.File, error) {
	return s.fs.Open(path.Join(s.root, rel))
}

// Delete removes the file; a missing file is not an error.
func (s *ImageStore) Delete(rel string) error {
	err := s.fs.Remove(path.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
