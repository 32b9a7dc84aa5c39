// Package storage keeps uploaded document bytes on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("storage: blob not found")
	// ErrInvalidName is returned for names that could escape the storage root.
	ErrInvalidName = errors.New("storage: invalid blob name")
)

// BlobStore persists uploaded files under flat generated names.
type BlobStore interface {
	Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

var unsafeNameCharacters = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

const randomSuffixLimit = 1_000_000_000

// GenerateName builds a collision-resistant flat name from the uploaded file name:
// {sanitizedBase}-{unixMillis}-{random}{ext}.
func GenerateName(original string, now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = unsafeNameCharacters.ReplaceAllString(stem, "_")
	ext = unsafeNameCharacters.ReplaceAllString(ext, "_")
	if stem == "" {
		stem = "file"
	}

	suffix, err := rand.Int(random, big.NewInt(randomSuffixLimit))
	if err != nil {
		return "", fmt.Errorf("generate blob name: %w", err)
	}
	return fmt.Sprintf("%s-%d-%d%s", stem, now.UnixMilli(), suffix.Int64(), ext), nil
}

// ValidateName rejects names that are empty or carry path components.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}

// PublicURL returns the download path served for a stored blob.
func PublicURL(name string) string {
	return "/uploads/" + name
}

// NameFromURL extracts the blob name from a public download path.
func NameFromURL(url string) string {
	return filepath.Base(strings.TrimSpace(url))
}
