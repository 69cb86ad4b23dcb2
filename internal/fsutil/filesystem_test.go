package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryFileSystemRoundTrip(t *testing.T) {
	m := NewMemoryFileSystem()

	if m.Exists("/a/b.txt") {
		t.Fatal("empty filesystem claims a file exists")
	}

	if err := m.WriteFile("/a/b.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := m.ReadFile("/a/b.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile = %q, expected hello", data)
	}

	// Mutating the returned slice must not change the stored file.
	data[0] = 'H'
	again, _ := m.ReadFile("/a/b.txt")
	if string(again) != "hello" {
		t.Errorf("stored file mutated through ReadFile result: %q", again)
	}

	info, err := m.Stat("/a/b.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 5 || info.Name() != "b.txt" {
		t.Errorf("Stat = %q/%d, expected b.txt/5", info.Name(), info.Size())
	}

	f, err := m.Open("/a/b.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	all, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(all) != "hello" {
		t.Errorf("Open/ReadAll = %q", all)
	}

	if err := m.Remove("/a/b.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists("/a/b.txt") {
		t.Error("file still exists after Remove")
	}
}

func TestMemoryFileSystemMissingFiles(t *testing.T) {
	m := NewMemoryFileSystem()

	if _, err := m.ReadFile("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile missing: %v", err)
	}
	if _, err := m.Open("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open missing: %v", err)
	}
	if _, err := m.Stat("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat missing: %v", err)
	}
	if err := m.Remove("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove missing: %v", err)
	}
}

func TestMemoryFileSystemCleansPaths(t *testing.T) {
	m := NewMemoryFileSystem()
	if err := m.WriteFile("/data//scene/./header.dim", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !m.Exists("/data/scene/header.dim") {
		t.Error("path was not cleaned on write")
	}
}

func TestOSFileSystem(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")

	if err := osfs.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !osfs.Exists(path) {
		t.Error("Exists = false after write")
	}
	data, err := osfs.ReadFile(path)
	if err != nil || len(data) != 3 {
		t.Fatalf("ReadFile = %v, %v", data, err)
	}
	info, err := osfs.Stat(path)
	if err != nil || info.Size() != 3 {
		t.Fatalf("Stat = %v, %v", info, err)
	}
	if err := osfs.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Error("file still on disk after Remove")
	}
}
