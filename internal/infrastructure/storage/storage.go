// Package storage archives exported report files in S3-compatible object
// storage and hands out presigned download links for them.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectStorage stores exported files
type ObjectStorage interface {
	// Upload writes data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// GenerateDownloadURL returns a time-limited GET link for key.
	// A zero expiresIn uses the storage default.
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportKey builds the object key of an archived export, grouped by month:
// <prefix>/exports/2024/03/sales_2024-03-01_2024-03-07_20240308T101500.xlsx
func ExportKey(prefix, name, ext string, now time.Time) string {
	file := fmt.Sprintf("%s_%s.%s", name, now.UTC().Format("20060102T150405"), strings.TrimPrefix(ext, "."))
	return path.Join(strings.Trim(prefix, "/"), "exports", now.UTC().Format("2006/01"), file)
}
