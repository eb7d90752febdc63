// Package archive walks the entries of zip exports so they can be uploaded individually.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// EntryFilter reports whether the entry with the given name should be visited.
type EntryFilter func(name string) bool

// EntryFunc is called with the path of an extracted entry. The file is removed
// once the callback returns.
type EntryFunc func(ctx context.Context, path string) error

// Iterator visits the file entries of an archive.
type Iterator interface {
	Walk(ctx context.Context, archivePath string, fn EntryFunc, keep EntryFilter) error
}

// ExcludeContaining returns a filter rejecting entries whose name contains marker.
func ExcludeContaining(marker string) EntryFilter {
	return func(name string) bool {
		return !strings.Contains(name, marker)
	}
}

// ZipIterator extracts zip entries one at a time into a scratch directory.
type ZipIterator struct {
	// TempDir is the parent of scratch directories. Empty means os.TempDir().
	TempDir string
}

var _ Iterator = (*ZipIterator)(nil)

// NewZipIterator creates a ZipIterator using tempDir for scratch space.
func NewZipIterator(tempDir string) *ZipIterator {
	return &ZipIterator{TempDir: tempDir}
}

// Walk extracts every kept file entry of the zip at archivePath and passes its
// path to fn, in archive order. Directory entries and macOS resource forks are
// skipped. The first error from reading the archive or from fn stops the walk.
func (z *ZipIterator) Walk(ctx context.Context, archivePath string, fn EntryFunc, keep EntryFilter) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer r.Close()

	scratch, err := os.MkdirTemp(z.TempDir, "figshare-entries-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	for i, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX") {
			continue
		}
		if keep != nil && !keep(f.Name) {
			continue
		}

		entryPath, err := extract(f, filepath.Join(scratch, strconv.Itoa(i)))
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}

		err = fn(ctx, entryPath)
		os.Remove(entryPath)
		if err != nil {
			return err
		}
	}
	return nil
}

// extract writes the entry to dest under its base name and returns the file path.
func extract(f *zip.File, dest string) (string, error) {
	fpath := filepath.Join(dest, path.Base(f.Name))

	// Check for ZipSlip
	if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%s: illegal file path", f.Name)
	}

	if err := os.MkdirAll(dest, 0o700); err != nil {
		return "", err
	}

	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", err
	}
	return fpath, out.Close()
}
