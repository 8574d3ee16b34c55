package sftp

import (
	"fmt"
	"testing"
)

func TestDeleteAll(t *testing.T) {
	targets := []DeleteTarget{
		{Name: "a.txt"},
		{Name: "b", IsDir: true},
		{Name: "c.txt"},
	}

	t.Run("All succeed", func(t *testing.T) {
		deleted, err := DeleteAll(targets, func(name string, isDir bool) error {
			return nil
		})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if deleted != 3 {
			t.Errorf("Expected 3 deleted, got %d", deleted)
		}
	})

	t.Run("Failures do not abort the batch", func(t *testing.T) {
		var attempted []string
		deleted, err := DeleteAll(targets, func(name string, isDir bool) error {
			attempted = append(attempted, name)
			if name == "b" {
				return fmt.Errorf("'%s': directory not empty", name)
			}
			return nil
		})

		if len(attempted) != 3 {
			t.Fatalf("Expected all 3 attempted, got %v", attempted)
		}
		if deleted != 2 {
			t.Errorf("Expected 2/3 deleted, got %d", deleted)
		}
		if err == nil || err.Error() != "'b': directory not empty" {
			t.Errorf("Expected the failing entry's error, got %v", err)
		}
	})

	t.Run("Last error wins across multiple failures", func(t *testing.T) {
		deleted, err := DeleteAll(targets, func(name string, isDir bool) error {
			return fmt.Errorf("cannot delete %s", name)
		})

		if deleted != 0 {
			t.Errorf("Expected 0 deleted, got %d", deleted)
		}
		if err == nil || err.Error() != "cannot delete c.txt" {
			t.Errorf("Expected last error retained, got %v", err)
		}
	})
}
