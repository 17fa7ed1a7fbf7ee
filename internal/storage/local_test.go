package storage

import (
	"context"
	"errors"
	"testing"
)

func TestLocalStorage_WriteRead(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	objectPath := ActivePrefix + "/sales_20250115_093000_sales.csv"
	content := []byte("date,sku,quantity,revenue\n2025-01-15,SKU-1,2,19.98\n")

	if err := storage.Write(ctx, objectPath, content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	exists, err := storage.Exists(ctx, objectPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}

	got, err := storage.Read(ctx, objectPath)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestLocalStorage_WriteOverwrites(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := storage.Write(ctx, "a/b.csv", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := storage.Write(ctx, "a/b.csv", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := storage.Read(ctx, "a/b.csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestLocalStorage_ReadMissing(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = storage.Read(context.Background(), "nope/missing.csv")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_List(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	paths := []string{
		ActivePrefix + "/sales_20250115_093000_a.csv",
		ActivePrefix + "/inventory_20250116_110000_b.csv",
		RejectedPrefix + "/sales_20250117_120000_c.csv",
	}
	for _, p := range paths {
		if err := storage.Write(ctx, p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	active, err := storage.List(ctx, ActivePrefix)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active objects, got %d: %v", len(active), active)
	}

	rejected, err := storage.List(ctx, RejectedPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(rejected) != 1 {
		t.Errorf("expected 1 rejected object, got %d", len(rejected))
	}

	empty, err := storage.List(ctx, "uploads/other")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no objects, got %v", empty)
	}
}

func TestLocalStorage_Delete(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := storage.Write(ctx, "x/y.csv", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := storage.Delete(ctx, "x/y.csv"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, err := storage.Exists(ctx, "x/y.csv")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("object should be gone")
	}

	if err := storage.Delete(ctx, "x/y.csv"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, p := range []string{"../outside.csv", "a/../../outside.csv", "/etc/passwd"} {
		if err := storage.Write(ctx, p, []byte("x")); err == nil {
			t.Errorf("expected rejection for path %q", p)
		}
	}
}
