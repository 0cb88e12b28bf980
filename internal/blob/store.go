// Package blob stores uploaded files and hands back their public URL.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultFolder = "uploads"

var (
	ErrEmptyFile     = errors.New("no file provided")
	ErrInvalidFolder = errors.New("invalid upload folder")
)

type Object struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Object, error)
}

// ObjectName builds "<folder>/<unix ms>-<n>.<ext>". The extension comes from
// filename and is "bin" when it has none.
func ObjectName(folder, filename string, at time.Time, n int64) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d-%d.%s", folder, at.UnixMilli(), n, strings.ToLower(ext))
}

func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return DefaultFolder, nil
	}
	cleaned := path.Clean(folder)
	if cleaned != folder || strings.Contains(cleaned, "..") || strings.Contains(cleaned, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	return cleaned, nil
}

// FileStore keeps objects on the local disk under <dir>/<bucket> and
// publishes them below <publicURL>/<bucket>.
type FileStore struct {
	root      string
	bucket    string
	publicURL string
	now       func() time.Time
	randN     func() int64
}

func NewFileStore(dir, bucket, publicURL string) (*FileStore, error) {
	root := filepath.Join(dir, bucket)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: failed to create bucket directory: %w", err)
	}
	return &FileStore{
		root:      root,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		randN:     func() int64 { return rand.Int64N(1e9) },
	}, nil
}

// Bucket is the URL path segment files are served under.
func (s *FileStore) Bucket() string {
	return s.bucket
}

func (s *FileStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if r == nil {
		return Object{}, ErrEmptyFile
	}

	folder, err := cleanFolder(folder)
	if err != nil {
		return Object{}, err
	}

	name := ObjectName(folder, filename, s.now(), s.randN())
	target := filepath.Join(s.root, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("blob: failed to create folder %s: %w", folder, err)
	}

	// O_EXCL: an existing object is never overwritten
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("blob: failed to create %s: %w", name, err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = ErrEmptyFile
	}
	if err != nil {
		_ = os.Remove(target)
		log.Warn().Err(err).Str("object", name).Msg("blob: upload failed")
		return Object{}, fmt.Errorf("blob: failed to write %s: %w", name, err)
	}

	log.Info().Str("object", name).Str("content_type", contentType).Int64("bytes", written).Msg("blob: object stored")
	return Object{Path: name, URL: s.publicURL + "/" + s.bucket + "/" + name}, nil
}

// inlineExtensions are served inline. Everything else, svg and html
// included, goes out as an attachment.
var inlineExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

// Handler serves stored objects; mount it under "/<bucket>/".
func (s *FileStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.root))
	return http.StripPrefix("/"+s.bucket+"/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if !inlineExtensions[strings.ToLower(path.Ext(r.URL.Path))] {
			w.Header().Set("Content-Disposition", "attachment")
		}
		files.ServeHTTP(w, r)
	}))
}
