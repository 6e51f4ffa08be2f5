package local

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/vbonduro/courtlog/internal/domain"
)

type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{basePath: basePath}, nil
}

// Store writes r under a key of the form {uuid}_{originalName}. The random
// prefix makes collisions impossible regardless of the uploaded filename.
func (s *LocalPhotoStore) Store(ctx context.Context, originalName string, r io.Reader) (string, error) {
	key := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(originalName))
	filePath := filepath.Join(s.basePath, key)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %v", domain.ErrStorageWrite, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("%w: failed to write file: %v", domain.ErrStorageWrite, err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("%w: failed to close file: %v", domain.ErrStorageWrite, err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Retrieve(ctx context.Context, key string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: photo %s not found", domain.ErrStorageRead, key)
		}
		return nil, "", fmt.Errorf("%w: failed to open %s: %v", domain.ErrStorageRead, key, err)
	}
	return f, extToMimeType(filePath), nil
}

// Thumbnail decodes the stored photo, scales it down so neither dimension
// exceeds the given bounds (aspect ratio preserved, never upscaled),
// re-encodes it as PNG, and returns it base64-encoded.
func (s *LocalPhotoStore) Thumbnail(ctx context.Context, key string, maxWidth, maxHeight int) (string, error) {
	f, _, err := s.Retrieve(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close photo file", "key", key, "error", cerr)
		}
	}()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode %s: %v", domain.ErrStorageRead, key, err)
	}

	dst := scaleToFit(src, maxWidth, maxHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("%w: failed to encode thumbnail for %s: %v", domain.ErrStorageRead, key, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Delete removes the photo if present. A missing file is not an error.
func (s *LocalPhotoStore) Delete(ctx context.Context, key string) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete %s: %v", domain.ErrStorageWrite, key, err)
	}
	return nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *LocalPhotoStore) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base path: %v", domain.ErrStorageRead, err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("%w: invalid path: %v", domain.ErrStorageRead, err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path traversal attempt", domain.ErrStorageRead)
	}
	return absPath, nil
}

func scaleToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	ratio := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	dw := max(int(float64(w)*ratio), 1)
	dh := max(int(float64(h)*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
