package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"syncmeta-go/internal/config"
	"syncmeta-go/internal/syncmeta"
)

// newTestConfig returns a config for source id whose root holds files and
// whose store lives in storeDir, so several sources can share it.
func newTestConfig(t *testing.T, id, storeDir string, files map[string]string) *config.Config {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("creating parent of %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
	}

	cfg := config.NewConfig(id, root, t.TempDir())
	cfg.Database.DataDir = storeDir
	return cfg
}

func initSchema(t *testing.T, cfg *config.Config) {
	t.Helper()
	a, err := NewSchemaApp(cfg, "schema init")
	if err != nil {
		t.Fatalf("NewSchemaApp() error = %v", err)
	}
	defer a.Close()
	if err := a.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
}

func TestNewSyncApp_RequiresSchema(t *testing.T) {
	cfg := newTestConfig(t, "laptop", t.TempDir(), nil)

	if _, err := NewSyncApp(cfg, "snapshot scan"); err == nil {
		t.Fatal("NewSyncApp() expected error before schema init")
	}

	initSchema(t, cfg)

	a, err := NewSyncApp(cfg, "snapshot scan")
	if err != nil {
		t.Fatalf("NewSyncApp() after schema init error = %v", err)
	}
	a.Close()
}

func TestNewSyncApp_InvalidScanConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{name: "unknown hash", mutate: func(c *config.Config) { c.Scan.HashAlgorithm = "md5" }},
		{name: "unknown file id mode", mutate: func(c *config.Config) { c.Scan.FileIDs = "inode" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t, "laptop", t.TempDir(), nil)
			tt.mutate(cfg)
			if _, err := NewSchemaApp(cfg, "schema init"); err == nil {
				t.Error("NewSchemaApp() expected error")
			}
		})
	}
}

func TestSyncApp_RecordAndForeign(t *testing.T) {
	ctx := context.Background()
	storeDir := t.TempDir()

	laptop := newTestConfig(t, "laptop", storeDir, map[string]string{"a.txt": "hi", "sub/b.txt": "bye"})
	usb := newTestConfig(t, "usb", storeDir, map[string]string{"a.txt": "hi"})
	initSchema(t, laptop)

	for _, cfg := range []*config.Config{laptop, usb} {
		a, err := NewSyncApp(cfg, "snapshot record")
		if err != nil {
			t.Fatalf("NewSyncApp(%s) error = %v", cfg.Source.ID, err)
		}
		if _, err := a.Record(ctx); err != nil {
			t.Fatalf("Record(%s) error = %v", cfg.Source.ID, err)
		}
		a.Close()
	}

	a, err := NewSyncApp(laptop, "snapshot foreign")
	if err != nil {
		t.Fatalf("NewSyncApp() error = %v", err)
	}
	defer a.Close()

	foreign, err := a.Foreign(ctx)
	if err != nil {
		t.Fatalf("Foreign() error = %v", err)
	}
	if foreign.Len() != 1 || foreign.Items[0].SourceID != "usb" {
		t.Fatalf("Foreign() = %+v, want the usb row only", foreign.Items)
	}
	if want := filepath.Join(laptop.Source.Path, "a.txt"); foreign.Items[0].AbsolutePath != want {
		t.Errorf("AbsolutePath = %q, want %q", foreign.Items[0].AbsolutePath, want)
	}

	own, err := a.Persisted(ctx)
	if err != nil {
		t.Fatalf("Persisted() error = %v", err)
	}
	if own.Len() != 2 {
		t.Errorf("Persisted() has %d items, want 2", own.Len())
	}

	baseline, err := a.Baseline(ctx)
	if err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}
	if baseline.Local.Len() != 2 || baseline.Foreign.Len() != 1 {
		t.Errorf("Baseline() = %d local, %d foreign, want 2 and 1", baseline.Local.Len(), baseline.Foreign.Len())
	}
}

func TestSyncApp_ResetSchema(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, "laptop", t.TempDir(), map[string]string{"a.txt": "hi"})
	initSchema(t, cfg)

	a, err := NewSchemaApp(cfg, "schema reset")
	if err != nil {
		t.Fatalf("NewSchemaApp() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Record(ctx); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := a.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema() error = %v", err)
	}

	own, err := a.Persisted(ctx)
	if err != nil {
		t.Fatalf("Persisted() error = %v", err)
	}
	if own.Len() != 0 {
		t.Errorf("Persisted() has %d items after reset, want 0", own.Len())
	}
}

func TestSyncApp_ScanMissingRoot(t *testing.T) {
	cfg := newTestConfig(t, "laptop", t.TempDir(), nil)
	cfg.Source.Path = filepath.Join(cfg.Source.Path, "missing")
	initSchema(t, cfg)

	a, err := NewSyncApp(cfg, "snapshot scan")
	if err != nil {
		t.Fatalf("NewSyncApp() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Scan(); !errors.Is(err, syncmeta.ErrScan) {
		t.Errorf("Scan() error = %v, want ErrScan", err)
	}
}

func TestSyncApp_Export(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, "laptop", t.TempDir(), map[string]string{"a.txt": "hi"})
	initSchema(t, cfg)

	a, err := NewSyncApp(cfg, "db export")
	if err != nil {
		t.Fatalf("NewSyncApp() error = %v", err)
	}
	defer a.Close()

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := a.Export(ctx, dest); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("export file missing: %v", err)
	}
	if err := a.Export(ctx, dest); err == nil {
		t.Error("Export() expected error when destination exists")
	}
}
