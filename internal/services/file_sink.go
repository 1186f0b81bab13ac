package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink persists blobs produced by the app (exports, attachments) and
// returns where they landed.
type FileSink interface {
	WriteFile(ctx context.Context, name string, data []byte) (string, error)
	RemoveFile(ctx context.Context, path string) error
}

// DirectorySink writes into the folder returned by root at call time, so a
// storage folder changed in preferences takes effect without a restart.
type DirectorySink struct {
	root func() string
}

func NewDirectorySink(root func() string) *DirectorySink {
	return &DirectorySink{root: root}
}

func (sink *DirectorySink) WriteFile(_ context.Context, name string, data []byte) (string, error) {
	root := strings.TrimSpace(sink.root())
	if root == "" {
		return "", ErrStorageFolderNotSet
	}
	target, err := sink.resolve(root, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create storage folder: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(target), ".chitra-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tempName := temp.Name()
	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempName)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempName)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tempName, target); err != nil {
		_ = os.Remove(tempName)
		return "", fmt.Errorf("move %s into place: %w", name, err)
	}
	return target, nil
}

// RemoveFile deletes a file previously written by the sink. Paths outside the
// storage folder are ignored.
func (sink *DirectorySink) RemoveFile(_ context.Context, path string) error {
	root := strings.TrimSpace(sink.root())
	if root == "" || path == "" {
		return nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return nil
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (sink *DirectorySink) resolve(root string, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: file name %q", ErrInvalidRecordInput, name)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(absRoot, cleaned), nil
}
