package archive

import (
	"context"
	"testing"
)

func TestLocalFS_WriteRead(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS() error = %v", err)
	}

	ctx := context.Background()
	data := []byte(`{"symbol":"BTCUSDT"}`)

	if err := store.Write(ctx, "reports/btcusdt/ma_crossover/2024-06-30.json", data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := store.Read(ctx, "reports/btcusdt/ma_crossover/2024-06-30.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestLocalFS_List(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS() error = %v", err)
	}

	ctx := context.Background()
	paths := []string{
		"reports/btcusdt/ma_crossover/2024-06-30.json",
		"reports/btcusdt/buy_hold/2024-06-30.json",
		"reports/ethusdt/ma_crossover/2024-06-30.json",
	}
	for _, p := range paths {
		if err := store.Write(ctx, p, []byte("x")); err != nil {
			t.Fatalf("Write(%s) error = %v", p, err)
		}
	}

	got, err := store.List(ctx, "reports/btcusdt")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(reports/btcusdt) returned %d paths, want 2", len(got))
	}

	all, err := store.List(ctx, "reports")
	if err != nil {
		t.Fatalf("List(reports) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List(reports) returned %d paths, want 3", len(all))
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS() error = %v", err)
	}

	got, err := store.List(context.Background(), "nope")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List(nope) returned %d paths, want 0", len(got))
	}
}

func TestLocalFS_DeleteAndExists(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS() error = %v", err)
	}

	ctx := context.Background()
	path := "reports/btcusdt/ma_crossover/2024-06-30.json"

	if err := store.Write(ctx, path, []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	exists, err := store.Exists(ctx, path)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v, want true, nil", exists, err)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err = store.Exists(ctx, path)
	if err != nil || exists {
		t.Errorf("Exists() after delete = %v, %v, want false, nil", exists, err)
	}
}
