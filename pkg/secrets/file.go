package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads secrets from one file per name inside a directory.
type FileProvider struct {
	dir string
}

// NewFileProvider returns a provider rooted at dir, which must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve secrets dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("secrets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets dir %s is not a directory", dir)
	}
	return &FileProvider{dir: abs}, nil
}

// Lookup implements Provider. Names that escape the directory, non-regular
// files and files readable by group or others are rejected.
func (p *FileProvider) Lookup(_ context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", redact(name))
	}
	path := filepath.Join(p.dir, name)

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w in %s", ErrNotFound, p.dir)
	}
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret file %s is not a regular file", path)
	}
	if perm := info.Mode().Perm(); perm != 0o600 && perm != 0o400 {
		return "", fmt.Errorf("secret file %s has mode %o, want 0600 or 0400", path, perm)
	}

	// #nosec G304 - name is a single path element inside p.dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }
