package mcpservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/gofrs/flock"
)

func TestFileResourceTextAndBlob(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.md")
	bin := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(txt, []byte("# notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bin, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	srv, _ := newTestServer(t)
	srv.Register(
		FileResource("file:///notes", txt, WithFileMimeType("text/markdown")),
		FileResource("file:///data", bin),
	)
	ctx := context.Background()

	res, err := srv.ReadResource(ctx, "file:///notes")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	tc, ok := res.Contents[0].(*mcp.TextResourceContents)
	if !ok || tc.Text != "# notes" || tc.MimeType != "text/markdown" || tc.URI != "file:///notes" {
		t.Fatalf("unexpected contents %#v", res.Contents[0])
	}

	res, err = srv.ReadResource(ctx, "file:///data")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	bc, ok := res.Contents[0].(*mcp.BlobResourceContents)
	if !ok || len(bc.Blob) != 3 || bc.MimeType != "application/octet-stream" {
		t.Fatalf("unexpected contents %#v", res.Contents[0])
	}

	r, _ := srv.FindResource("file:///notes")
	if r.Path() != txt || r.Name != "notes.md" {
		t.Fatalf("descriptor = %+v", r)
	}
}

func TestFileResourceMissingFileNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")
	srv, _ := newTestServer(t)
	srv.Register(FileResource("file:///gone", path))

	if _, err := srv.ReadResource(context.Background(), "file:///gone"); !errors.Is(err, ErrProviderFailed) {
		t.Fatalf("expected ErrProviderFailed, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("reading must not create the file: %v", err)
	}
}

func TestFileResourceWaitsForWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	writer := flock.New(path)
	if err := writer.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer writer.Close()

	srv, _ := newTestServer(t)
	srv.Register(FileResource("file:///locked", path, WithFileLockTimeout(50*time.Millisecond)))

	_, err := srv.ReadResource(context.Background(), "file:///locked")
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while writer holds the lock, got %v", err)
	}

	if err := writer.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := srv.ReadResource(context.Background(), "file:///locked"); err != nil {
		t.Fatalf("read after unlock: %v", err)
	}
}
