package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrObjectNotFound is returned by Head and GetObject for unknown keys.
var ErrObjectNotFound = errors.New("object not found")

type ObjectMeta struct {
	Key         string
	Size        int
	ContentType string
	UpdatedAt   time.Time
}

// Storage receives exported artifacts. Keys are plain file names.
type Storage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	Head(ctx context.Context, key string) (ObjectMeta, error)
	GetObject(ctx context.Context, key string) ([]byte, ObjectMeta, error)
}

// InMemoryStorage keeps artifacts in memory. Only tests use it.
type InMemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
	meta map[string]ObjectMeta
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		data: map[string][]byte{},
		meta: map[string]ObjectMeta{},
	}
}

func (s *InMemoryStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), body...)
	s.meta[key] = ObjectMeta{
		Key:         key,
		Size:        len(body),
		ContentType: contentType,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

func (s *InMemoryStorage) Head(_ context.Context, key string) (ObjectMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.meta[key]
	if !ok {
		return ObjectMeta{}, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return meta, nil
}

func (s *InMemoryStorage) GetObject(_ context.Context, key string) ([]byte, ObjectMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.data[key]
	if !ok {
		return nil, ObjectMeta{}, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return append([]byte(nil), body...), s.meta[key], nil
}

// Keys lists stored keys in no particular order.
func (s *InMemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// DirStorage writes artifacts as files under Root.
type DirStorage struct {
	Root string
}

func NewDirStorage(root string) (DirStorage, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return DirStorage{}, fmt.Errorf("create output dir: %w", err)
	}
	return DirStorage{Root: root}, nil
}

func (s DirStorage) PutObject(ctx context.Context, key string, body []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Root, ".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s DirStorage) Head(_ context.Context, key string) (ObjectMeta, error) {
	path, err := s.path(key)
	if err != nil {
		return ObjectMeta{}, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ObjectMeta{}, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	if err != nil {
		return ObjectMeta{}, err
	}
	return ObjectMeta{
		Key:         key,
		Size:        int(info.Size()),
		ContentType: contentTypeFor(key),
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

func (s DirStorage) GetObject(ctx context.Context, key string) ([]byte, ObjectMeta, error) {
	meta, err := s.Head(ctx, key)
	if err != nil {
		return nil, ObjectMeta{}, err
	}
	path, _ := s.path(key)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, ObjectMeta{}, fmt.Errorf("read %s: %w", key, err)
	}
	return body, meta, nil
}

func (s DirStorage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.Root, key), nil
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return ContentTypePDF
	case ".xlsx":
		return ContentTypeXLSX
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
