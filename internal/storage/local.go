package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotExist    = errors.New("blob does not exist")
	ErrInvalidName = errors.New("invalid blob name")
)

// BlobStore is the filesystem collaborator behind attachments. Names are opaque
// locators relative to the store root.
type BlobStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (name string, written int64, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload dir %s", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve upload dir")
	}
	return &LocalStore{root: abs}, nil
}

// NewName builds file-<unix nanos>-<16 hex chars><ext>, unique across concurrent
// uploads even for identical original filenames.
func NewName(ext string) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", errors.Wrap(err, "failed to read randomness")
	}
	return fmt.Sprintf("file-%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(buf[:]), strings.ToLower(ext)), nil
}

// Save streams r into a freshly named file. A partially written file is removed.
func (s *LocalStore) Save(ctx context.Context, ext string, r io.Reader) (string, int64, error) {
	name, err := NewName(ext)
	if err != nil {
		return "", 0, err
	}
	path, err := s.resolve(name)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to create blob")
	}

	written, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, errors.Wrap(err, "failed to write blob")
	}

	return name, written, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrap(err, "failed to open blob")
	}
	return f, nil
}

// Remove returns ErrNotExist when the file is already gone.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return errors.Wrap(err, "failed to remove blob")
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list upload dir")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *LocalStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
