package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohammadpnp/sheet-import/internal/infrastructure/file"
)

func TestUploadStagingStageAndRemove(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "uploads")
	staging := file.NewUploadStaging(dir)

	path, err := staging.Stage(context.Background(), "Planta Permanente.XLS", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected file under %s, got %s", dir, path)
	}
	if filepath.Ext(path) != ".xls" {
		t.Fatalf("expected .xls extension, got %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(content) != "payload" {
		t.Fatalf("unexpected content: %q", content)
	}

	staging.Remove(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected staged file to be removed, got %v", err)
	}
	staging.Remove(path)
}

func TestUploadStagingCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := file.NewUploadStaging(t.TempDir()).Stage(ctx, "a.xlsx", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
