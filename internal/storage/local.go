package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images under root and serves them from baseURL
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "recipes"), 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, img Image) (string, error) {
	name := objectName(img)
	if err := os.WriteFile(filepath.Join(s.root, filepath.FromSlash(name)), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	log.WithField("file", name).Debug("Image stored on disk")
	return s.baseURL + "/" + name, nil
}

// Delete removes a file previously returned by Save. Unknown references and
// already missing files are ignored.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
