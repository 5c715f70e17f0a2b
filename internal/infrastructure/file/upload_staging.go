package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// UploadStaging writes uploaded workbooks to temporary files so readers that
// need a path can open them.
type UploadStaging struct {
	BaseDir string
}

func NewUploadStaging(baseDir string) *UploadStaging {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &UploadStaging{BaseDir: baseDir}
}

// Stage copies src to a new file that keeps the extension of fileName, which
// is how the reader picks the workbook format.
func (s *UploadStaging) Stage(ctx context.Context, fileName string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir %s: %w", s.BaseDir, err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	dst, err := os.CreateTemp(s.BaseDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staged file for %s: %w", fileName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		s.Remove(dst.Name())
		return "", fmt.Errorf("stage %s: %w", fileName, err)
	}
	if err := dst.Close(); err != nil {
		s.Remove(dst.Name())
		return "", fmt.Errorf("stage %s: %w", fileName, err)
	}
	return dst.Name(), nil
}

func (s *UploadStaging) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to remove staged upload %s: %v", path, err)
	}
}
