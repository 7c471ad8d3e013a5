package datastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/rs/zerolog"
)

var (
	logger = gologger.NewLogger()
)

type (
	// DiskDataStore keeps export files under a local root, laid out the same
	// way as the bucket keys.
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	logger.Debug().Str("rootPath", rootPath).Msg("using disk datastore")
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) path(fileName string) string {
	return filepath.Join(dds.rootPath, filepath.FromSlash(fileName))
}

// GetFile opens a previously written file. The caller closes it.
func (dds *DiskDataStore) GetFile(_ context.Context, fileName string) (io.ReadCloser, error) {
	f, err := os.Open(dds.path(fileName))
	if err != nil {
		return nil, fmt.Errorf("error in os.Open: %w", err)
	}
	return f, nil
}

// WriteFile writes byteStream to fileName. The content type is only logged.
func (dds *DiskDataStore) WriteFile(ctx context.Context, fileName string, byteStream io.Reader, contentType *string) error {
	p := dds.path(fileName)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("error in os.Create: %w", err)
	}
	n, err := io.Copy(f, byteStream)
	if err != nil {
		f.Close()
		return fmt.Errorf("error in io.Copy: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error in f.Close: %w", err)
	}

	ev := zerolog.Ctx(ctx).Debug().Str("path", p).Int64("bytes", n)
	if contentType != nil {
		ev = ev.Str("contentType", *contentType)
	}
	ev.Msg("wrote file to disk")
	return nil
}
