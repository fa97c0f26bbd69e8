package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKey(t *testing.T) {
	now := time.Date(2024, 3, 8, 10, 15, 0, 0, time.UTC)

	assert.Equal(t,
		"pos/exports/2024/03/sales_2024-03-01_2024-03-07_20240308T101500.xlsx",
		ExportKey("/pos/", "sales_2024-03-01_2024-03-07", ".xlsx", now))
	assert.Equal(t,
		"exports/2024/03/sales_20240308T101500.pdf",
		ExportKey("", "sales", "pdf", now))
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage("")

	_, _, err := s.GenerateDownloadURL(ctx, "missing.xlsx", 0)
	assert.Error(t, err)

	data := []byte("workbook")
	require.NoError(t, s.Upload(ctx, "exports/a.xlsx", data, "application/xlsx"))
	data[0] = 'W'

	stored, contentType, ok := s.Get("exports/a.xlsx")
	require.True(t, ok)
	assert.Equal(t, "workbook", string(stored))
	assert.Equal(t, "application/xlsx", contentType)

	url, expiresAt, err := s.GenerateDownloadURL(ctx, "exports/a.xlsx", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "memory://exports/exports/a.xlsx?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	assert.Error(t, s.Upload(ctx, "", data, ""))
}
