package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLogFilesWalksSubdirsAndSkipsOtherExtensions(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	first := filepath.Join(root, "one.glog")
	second := filepath.Join(sub, "two.glog")
	decoy := filepath.Join(sub, "notes.txt")
	for _, p := range []string{first, second, decoy} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", p, err)
		}
	}

	found, err := FindLogFiles(root)
	if err != nil {
		t.Fatalf("FindLogFiles: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("FindLogFiles returned %d paths, want 2: %v", len(found), found)
	}
	want := map[string]bool{first: true, second: true}
	for _, p := range found {
		if !want[p] {
			t.Fatalf("unexpected path %s in result %v", p, found)
		}
	}
}

func TestFindNearestWalksUpward(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "x", "y", "z")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	logPath := filepath.Join(root, "x", "repo.glog")
	if err := os.WriteFile(logPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, ok := FindNearest(sub)
	if !ok {
		t.Fatalf("FindNearest should find repo.glog from a descendant directory")
	}
	if got != logPath {
		t.Fatalf("FindNearest = %s, want %s", got, logPath)
	}
}

func TestFindNearestReturnsFalseWhenNoneExists(t *testing.T) {
	_, ok := FindNearest(t.TempDir())
	if ok {
		t.Fatalf("FindNearest should report false when no log file exists above startDir")
	}
}
