package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenerateNameSanitizesBase(t *testing.T) {
	now := time.UnixMilli(1740823200123)

	testCases := []struct {
		name     string
		original string
		pattern  string
	}{
		{name: "plain", original: "brief.pdf", pattern: `^brief-1740823200123-\d+\.pdf$`},
		{name: "spaces", original: "Client Notes (v2).docx", pattern: `^Client_Notes__v2_-1740823200123-\d+\.docx$`},
		{name: "path", original: "../../etc/passwd", pattern: `^passwd-1740823200123-\d+$`},
		{name: "windows-path", original: `C:\docs\order.txt`, pattern: `^order-1740823200123-\d+\.txt$`},
		{name: "empty", original: "", pattern: `^file-1740823200123-\d+$`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			generated, err := GenerateName(testCase.original, now, nil)
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			if !regexp.MustCompile(testCase.pattern).MatchString(generated) {
				t.Fatalf("name %q does not match %s", generated, testCase.pattern)
			}
			if err := ValidateName(generated); err != nil {
				t.Fatalf("generated name failed validation: %v", err)
			}
		})
	}
}

func TestValidateNameRejectsPaths(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../x"} {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected %q to be rejected, got %v", name, err)
		}
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	if NameFromURL(PublicURL("a-1-2.pdf")) != "a-1-2.pdf" {
		t.Fatalf("expected name to round trip through public url")
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "memo.txt", strings.NewReader("hearing notes"), 13, "text/plain"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "memo.txt", strings.NewReader("again"), 5, "text/plain"); err == nil {
		t.Fatalf("expected existing blob to be preserved")
	}

	reader, err := store.Open(ctx, "memo.txt")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	content, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil || !bytes.Equal(content, []byte("hearing notes")) {
		t.Fatalf("unexpected content %q err=%v", content, err)
	}

	if err := store.Remove(ctx, "memo.txt"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := store.Open(ctx, "memo.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
	if err := store.Remove(ctx, "memo.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Put(context.Background(), "../escape", strings.NewReader("x"), 1, ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
}
