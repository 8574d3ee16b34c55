package sftp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunEntries(t *testing.T) {
	entries := []FileEntry{
		{Name: "one.txt"},
		{Name: "two.txt"},
		{Name: "three.txt"},
	}

	t.Run("Full success ends in Done", func(t *testing.T) {
		prog := NewProgress(3)
		var attempted []string

		runEntries(entries, prog, func(e FileEntry) error {
			attempted = append(attempted, e.Name)
			prog.FinishFile()
			return nil
		})

		if len(attempted) != 3 {
			t.Errorf("Expected 3 attempts, got %d", len(attempted))
		}
		if state := prog.Snapshot().State; state != TransferDone {
			t.Errorf("Expected Done, got %v", state)
		}
	})

	t.Run("Batch aborts on the first failure", func(t *testing.T) {
		prog := NewProgress(3)
		var attempted []string

		runEntries(entries, prog, func(e FileEntry) error {
			attempted = append(attempted, e.Name)
			if e.Name == "two.txt" {
				return errors.New("permission denied")
			}
			prog.FinishFile()
			return nil
		})

		if len(attempted) != 2 {
			t.Fatalf("Expected third entry never attempted, got attempts %v", attempted)
		}
		snap := prog.Snapshot()
		if snap.State != TransferFailed {
			t.Errorf("Expected Failed, got %v", snap.State)
		}
		if snap.Message != "permission denied" {
			t.Errorf("Expected failure message retained, got %q", snap.Message)
		}
		if snap.FilesDone != 1 {
			t.Errorf("Expected exactly one file transferred, got %d", snap.FilesDone)
		}
	})

	t.Run("Entries are processed in caller-supplied order", func(t *testing.T) {
		prog := NewProgress(3)
		var attempted []string

		runEntries(entries, prog, func(e FileEntry) error {
			attempted = append(attempted, e.Name)
			return nil
		})

		want := []string{"one.txt", "two.txt", "three.txt"}
		for i, name := range want {
			if attempted[i] != name {
				t.Errorf("Position %d: expected %q, got %q", i, name, attempted[i])
			}
		}
	})

	t.Run("Already-failed batch starts no transfer", func(t *testing.T) {
		prog := NewProgress(3)
		prog.Fail("earlier entry failed")

		runEntries(entries, prog, func(e FileEntry) error {
			t.Errorf("Transfer attempted for %q despite failed batch", e.Name)
			return nil
		})

		if state := prog.Snapshot().State; state != TransferFailed {
			t.Errorf("Expected Failed preserved, got %v", state)
		}
	})
}

func TestCopyChunked(t *testing.T) {
	sizes := []int{0, 1, chunkSize, 2*chunkSize + 17}

	for _, size := range sizes {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i % 251)
		}

		var dst bytes.Buffer
		var reported int64
		var lastTotal int64

		written, err := copyChunked(&dst, bytes.NewReader(data), func(n int64) {
			reported += n
			if reported < lastTotal {
				t.Errorf("Size %d: progress went backwards", size)
			}
			lastTotal = reported
		})
		if err != nil {
			t.Fatalf("Size %d: copyChunked failed: %v", size, err)
		}

		if written != int64(size) {
			t.Errorf("Size %d: expected %d bytes written, got %d", size, size, written)
		}
		if reported != int64(size) {
			t.Errorf("Size %d: expected %d bytes reported, got %d", size, size, reported)
		}
		if !bytes.Equal(dst.Bytes(), data) {
			t.Errorf("Size %d: content mismatch after copy", size)
		}
	}
}

func TestCountLocalFiles(t *testing.T) {
	dir := t.TempDir()

	mustWrite := func(rel string) {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("a.txt")
	mustWrite("sub/b.txt")
	mustWrite("sub/deep/c.txt")
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	if n := CountLocalFiles(dir); n != 3 {
		t.Errorf("Expected 3 files, got %d", n)
	}
	if n := CountLocalFiles(filepath.Join(dir, "a.txt")); n != 1 {
		t.Errorf("Expected single file to count as 1, got %d", n)
	}
	if n := CountLocalFiles(filepath.Join(dir, "missing")); n != 0 {
		t.Errorf("Expected missing path to count as 0, got %d", n)
	}
}
