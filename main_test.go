package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFoldersExist(t *testing.T) {
	root := t.TempDir()
	static := filepath.Join(root, "static")
	output := filepath.Join(root, "output", "runs")

	if err := EnsureFoldersExist(static, output, ""); err != nil {
		t.Fatalf("EnsureFoldersExist() error = %v", err)
	}
	for _, dir := range []string{static, output} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
	}

	// 已存在时不报错
	if err := EnsureFoldersExist(static); err != nil {
		t.Errorf("EnsureFoldersExist() on existing dir error = %v", err)
	}
}
