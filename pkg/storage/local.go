package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type localStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) ImageStore {
	return &localStore{dir: dir, baseURL: baseURL}
}

func (s *localStore) Save(ctx context.Context, ext string, content []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("profile_%d%s", time.Now().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, filename), content, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}

	return strings.TrimSuffix(s.baseURL, "/") + "/" + filename, nil
}
