package filestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngContent = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 17)...)
)

func newTestStore(t *testing.T, maxBytes int64) (*CertificateStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewCertificateStore(Config{
		Dir:               dir,
		MaxBytes:          maxBytes,
		AllowedExtensions: []string{".pdf", ".png", ".jpg", ".jpeg"},
	}, nil)
	require.NoError(t, err)
	return s, dir
}

func TestSaveStoresUnderGeneratedName(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, 1<<20)

	ref, err := s.Save(context.Background(), "../../etc/My Licence.PDF", bytes.NewReader(pdfContent))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "certificates/"), "ref %q", ref)
	assert.True(t, strings.HasSuffix(ref, ".pdf"), "ref %q", ref)
	assert.NotContains(t, ref, "Licence")

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, pdfContent, stored)

	ref2, err := s.Save(context.Background(), "badge.png", bytes.NewReader(pngContent))
	require.NoError(t, err)
	assert.NotEqual(t, ref, ref2)
}

func TestSaveRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  []byte
		maxBytes int64
		wantErr  error
	}{
		{"disallowed extension", "script.exe", pdfContent, 1 << 20, ErrUnsupportedExtension},
		{"no extension", "certificate", pdfContent, 1 << 20, ErrUnsupportedExtension},
		{"text posing as pdf", "cert.pdf", []byte("just some plain text"), 1 << 20, ErrContentMismatch},
		{"pdf posing as png", "cert.png", pdfContent, 1 << 20, ErrContentMismatch},
		{"oversize", "cert.pdf", pdfContent, 16, ErrTooLarge},
		{"empty", "cert.pdf", nil, 1 << 20, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, dir := newTestStore(t, tt.maxBytes)
			_, err := s.Save(context.Background(), tt.filename, bytes.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrRejected)

			entries, err := os.ReadDir(filepath.Join(dir, "certificates"))
			require.NoError(t, err)
			assert.Empty(t, entries, "rejected uploads leave nothing on disk")
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t, 1<<20)
	ctx := context.Background()

	ref, err := s.Save(ctx, "cert.pdf", bytes.NewReader(pdfContent))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, ref), "removing twice is fine")

	for _, bad := range []string{"", "cert.pdf", "certificates/", "certificates/../config.yaml", "other/cert.pdf"} {
		assert.ErrorIs(t, s.Remove(ctx, bad), ErrInvalidReference, "ref %q", bad)
	}
}
