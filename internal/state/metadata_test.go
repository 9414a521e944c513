package state

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"picframe/internal/frame"
	"picframe/internal/testutil"
)

func newTestMetadataStore(t *testing.T, locking bool) (*MetadataStore, string, *testutil.StubClock) {
	t.Helper()
	clock := testutil.FixedClock()
	path := filepath.Join(t.TempDir(), "metadata.json")
	s, err := NewFileMetadataStore(path, locking, clock, frame.NewNopLogger())
	if err != nil {
		t.Fatalf("NewFileMetadataStore() error = %v", err)
	}
	return s, path, clock
}

func TestMetadataStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file", content: nil},
		{name: "empty file", content: ptr("")},
		{name: "malformed json", content: ptr(`{"images": {"a.png": `)},
		{name: "wrong shape", content: ptr(`["not", "an", "object"]`)},
		{name: "wrong field type", content: ptr(`{"images": "nope"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name+" yields empty document", func(t *testing.T) {
			s, path, _ := newTestMetadataStore(t, false)
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			doc, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if doc.Images == nil || doc.Users == nil {
				t.Fatalf("Load() returned nil maps: %+v", doc)
			}
			if len(doc.Images) != 0 || len(doc.Users) != 0 {
				t.Errorf("Load() = %+v, want empty document", doc)
			}
		})
	}

	t.Run("reads document written by the original server", func(t *testing.T) {
		s, path, _ := newTestMetadataStore(t, false)
		legacy := `{
  "images": {
    "cat_20240115_100000.png": {"uploader_ip": "10.0.0.5", "upload_time": "2024-01-15T10:00:00.123456"}
  }
}`
		if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
			t.Fatal(err)
		}

		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		rec, ok := doc.Images["cat_20240115_100000.png"]
		if !ok {
			t.Fatalf("Load() missing image record: %+v", doc.Images)
		}
		if rec.UploaderIP != "10.0.0.5" {
			t.Errorf("UploaderIP = %q, want %q", rec.UploaderIP, "10.0.0.5")
		}
		if doc.Users == nil {
			t.Error("Users map not allocated for document without users key")
		}
	})

	t.Run("unexpected read errors are returned", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission checks need a non-root unix user")
		}
		s, path, _ := newTestMetadataStore(t, false)
		if err := os.WriteFile(path, []byte(`{}`), 0000); err != nil {
			t.Fatal(err)
		}

		if _, err := s.Load(); err == nil {
			t.Fatal("Load() expected error for unreadable document")
		}
	})

	t.Run("document path that is a directory is an error", func(t *testing.T) {
		s, path, _ := newTestMetadataStore(t, false)
		if err := os.Mkdir(path, 0755); err != nil {
			t.Fatal(err)
		}

		if _, err := s.Load(); err == nil {
			t.Fatal("Load() expected error when document path is a directory")
		}
	})
}

func TestMetadataStore_RecordUpload(t *testing.T) {
	s, path, clock := newTestMetadataStore(t, false)

	if err := s.RecordUpload("a.png", "10.0.0.5"); err != nil {
		t.Fatalf("RecordUpload() error = %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	rec, ok := doc.Images["a.png"]
	if !ok {
		t.Fatal("record for a.png not stored")
	}
	if rec.UploaderIP != "10.0.0.5" {
		t.Errorf("UploaderIP = %q, want %q", rec.UploaderIP, "10.0.0.5")
	}
	if want := frame.FormatTimestamp(clock.Now()); rec.UploadTime != want {
		t.Errorf("UploadTime = %q, want %q", rec.UploadTime, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"images"`, `"users"`, `"uploader_ip"`, `"upload_time"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("persisted document missing %s:\n%s", key, data)
		}
	}

	t.Run("overwrites existing record", func(t *testing.T) {
		clock.Advance(time.Hour)
		if err := s.RecordUpload("a.png", "10.0.0.9"); err != nil {
			t.Fatalf("RecordUpload() error = %v", err)
		}
		doc, _ := s.Load()
		if got := doc.Images["a.png"].UploaderIP; got != "10.0.0.9" {
			t.Errorf("UploaderIP = %q, want %q", got, "10.0.0.9")
		}
		if len(doc.Images) != 1 {
			t.Errorf("len(Images) = %d, want 1", len(doc.Images))
		}
	})
}

func TestMetadataStore_RemoveUpload(t *testing.T) {
	t.Run("removes existing record", func(t *testing.T) {
		s, _, _ := newTestMetadataStore(t, false)
		_ = s.RecordUpload("a.png", "10.0.0.5")
		_ = s.RecordUpload("b.png", "10.0.0.6")

		if err := s.RemoveUpload("a.png"); err != nil {
			t.Fatalf("RemoveUpload() error = %v", err)
		}

		doc, _ := s.Load()
		if _, ok := doc.Images["a.png"]; ok {
			t.Error("a.png still present after RemoveUpload()")
		}
		if _, ok := doc.Images["b.png"]; !ok {
			t.Error("b.png removed unexpectedly")
		}
	})

	t.Run("missing record is a no-op", func(t *testing.T) {
		s, path, _ := newTestMetadataStore(t, false)

		if err := s.RemoveUpload("ghost.png"); err != nil {
			t.Fatalf("RemoveUpload() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("RemoveUpload() of missing record wrote the document: stat err = %v", err)
		}
	})
}

func TestMetadataStore_DisplayNames(t *testing.T) {
	s, _, _ := newTestMetadataStore(t, false)

	got, err := s.ResolveDisplayName("192.168.1.20")
	if err != nil {
		t.Fatalf("ResolveDisplayName() error = %v", err)
	}
	if got != "192.168.1.20" {
		t.Errorf("ResolveDisplayName() = %q, want address verbatim", got)
	}

	for _, name := range []string{"Grandma", "Nana"} {
		if err := s.SetDisplayName("192.168.1.20", name); err != nil {
			t.Fatalf("SetDisplayName(%q) error = %v", name, err)
		}
	}

	got, err = s.ResolveDisplayName("192.168.1.20")
	if err != nil {
		t.Fatalf("ResolveDisplayName() error = %v", err)
	}
	if got != "Nana" {
		t.Errorf("ResolveDisplayName() = %q, want last written name %q", got, "Nana")
	}

	doc, _ := s.Load()
	if len(doc.Users) != 1 {
		t.Errorf("len(Users) = %d, want 1 entry per address", len(doc.Users))
	}
}

func TestMetadataStore_ListUploaders(t *testing.T) {
	s, _, _ := newTestMetadataStore(t, false)
	_ = s.RecordUpload("a.png", "10.0.0.7")
	_ = s.RecordUpload("b.png", "10.0.0.5")
	_ = s.RecordUpload("c.png", "10.0.0.7")
	_ = s.SetDisplayName("10.0.0.99", "never uploaded")

	got, err := s.ListUploaders()
	if err != nil {
		t.Fatalf("ListUploaders() error = %v", err)
	}
	want := []string{"10.0.0.5", "10.0.0.7"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListUploaders() = %v, want %v", got, want)
	}
}

func TestMetadataStore_CorruptDocumentResetOnWrite(t *testing.T) {
	s, path, _ := newTestMetadataStore(t, false)
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.RecordUpload("a.png", "10.0.0.5"); err != nil {
		t.Fatalf("RecordUpload() error = %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != 1 {
		t.Errorf("len(Images) = %d, want 1", len(doc.Images))
	}
}

func TestMetadataStore_ConcurrentWritersWithLocking(t *testing.T) {
	s, _, _ := newTestMetadataStore(t, true)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("img%02d.png", i)
			if err := s.RecordUpload(name, "10.0.0.1"); err != nil {
				t.Errorf("RecordUpload() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != writers {
		t.Errorf("len(Images) = %d, want %d (lost update with locking enabled)", len(doc.Images), writers)
	}
}

func TestMetadataStore_LockingAcrossStoreInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	clock := testutil.FixedClock()
	a, err := NewFileMetadataStore(path, true, clock, frame.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileMetadataStore(path, true, clock, frame.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	const perStore = 10
	var wg sync.WaitGroup
	for i := 0; i < perStore; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = a.RecordUpload(fmt.Sprintf("a%02d.png", i), "10.0.0.1")
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = b.RecordUpload(fmt.Sprintf("b%02d.png", i), "10.0.0.2")
		}(i)
	}
	wg.Wait()

	doc, err := a.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != 2*perStore {
		t.Errorf("len(Images) = %d, want %d", len(doc.Images), 2*perStore)
	}
}

func TestMemoryMetadataStore(t *testing.T) {
	s := NewMemoryMetadataStore(false, testutil.FixedClock(), frame.NewNopLogger())

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Images) != 0 {
		t.Fatalf("new store not empty: %+v", doc)
	}

	if err := s.RecordUpload("a.png", "10.0.0.5"); err != nil {
		t.Fatalf("RecordUpload() error = %v", err)
	}
	doc, _ = s.Load()
	if doc.Images["a.png"].UploaderIP != "10.0.0.5" {
		t.Errorf("UploaderIP = %q, want %q", doc.Images["a.png"].UploaderIP, "10.0.0.5")
	}

	// Mutating a loaded document does not leak into the store.
	doc.Images["b.png"] = frame.ImageRecord{UploaderIP: "x"}
	again, _ := s.Load()
	if _, ok := again.Images["b.png"]; ok {
		t.Error("Load() returned a document aliased with the stored one")
	}
}

func ptr(s string) *string { return &s }
