package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/platform/logger"
)

// certificatePrefix is the directory under the upload root, and the prefix of
// every reference path handed back to callers.
const certificatePrefix = "certificates"

// Upload rejection errors. All of them wrap ErrRejected.
var (
	ErrRejected             = errors.New("certificate rejected")
	ErrUnsupportedExtension = fmt.Errorf("%w: unsupported file extension", ErrRejected)
	ErrTooLarge             = fmt.Errorf("%w: file too large", ErrRejected)
	ErrEmptyFile            = fmt.Errorf("%w: file is empty", ErrRejected)
	ErrContentMismatch      = fmt.Errorf("%w: content does not match extension", ErrRejected)
	ErrInvalidReference     = errors.New("invalid certificate reference")
)

// knownMIMETypes maps an extension to the content type its files must sniff as.
var knownMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Config describes where certificates go and what is accepted.
type Config struct {
	Dir               string
	MaxBytes          int64
	AllowedExtensions []string
}

// CertificateStore writes certificates to disk.
type CertificateStore struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
	logger   *slog.Logger
}

// NewCertificateStore creates the certificate directory if needed.
func NewCertificateStore(cfg Config, logger *slog.Logger) (*CertificateStore, error) {
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be positive, got %d", cfg.MaxBytes)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Join(cfg.Dir, certificatePrefix), 0o750); err != nil {
		return nil, fmt.Errorf("create certificate directory: %w", err)
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &CertificateStore{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		logger:   logger.With(slog.String("component", "certificate_store")),
	}, nil
}

// MaxBytes is the largest certificate Save accepts.
func (s *CertificateStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates and stores the upload, returning its reference path
// ("certificates/<uuid><ext>"). The client's filename only contributes its
// extension.
func (s *CertificateStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.allowed[ext]; !ok {
		log.Info("certificate rejected", slog.String("reason", "extension"), slog.String("extension", ext))
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read certificate: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		log.Info("certificate rejected", slog.String("reason", "size"))
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	detected := mimetype.Detect(data)
	if !matchesExtension(detected, ext) {
		log.Info("certificate rejected",
			slog.String("reason", "content"),
			slog.String("extension", ext),
			slog.String("detected", detected.String()))
		return "", fmt.Errorf("%w: %s is not %s", ErrContentMismatch, detected.String(), ext)
	}

	name := uuid.NewString() + ext
	ref := path.Join(certificatePrefix, name)
	if err := s.write(filepath.Join(s.dir, certificatePrefix), name, data); err != nil {
		log.Error("failed to write certificate", slog.String("error", err.Error()))
		return "", err
	}

	log.Info("certificate stored",
		slog.String("ref", ref),
		slog.Int("bytes", len(data)),
		slog.String("mime", detected.String()))
	return ref, nil
}

// write stores data via a temp file and rename so readers never see a
// partial certificate.
func (s *CertificateStore) write(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write certificate: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close certificate: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename certificate: %w", err)
	}
	return nil
}

// Remove deletes a certificate by reference path. Removing a missing file is
// not an error.
func (s *CertificateStore) Remove(ctx context.Context, ref string) error {
	dir, name := path.Split(ref)
	if dir != certificatePrefix+"/" || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	err := os.Remove(filepath.Join(s.dir, certificatePrefix, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove certificate: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("certificate removed", slog.String("ref", ref))
	return nil
}

func matchesExtension(detected *mimetype.MIME, ext string) bool {
	if want, ok := knownMIMETypes[ext]; ok {
		return detected.Is(want)
	}
	return detected.Extension() == ext
}
