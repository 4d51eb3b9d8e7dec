// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/navwar/gomirror/pkg/fs"
)

// LocalFileSystem is a filesystem rooted at a local path.
// Names are resolved below the root and cannot escape it.
type LocalFileSystem struct {
	fs   afero.Fs
	root string
}

func (lfs *LocalFileSystem) Chmod(ctx context.Context, name string, mode os.FileMode) error {
	return lfs.fs.Chmod(name, mode)
}

func (lfs *LocalFileSystem) Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error {
	return lfs.fs.Chtimes(name, atime, mtime)
}

func (lfs *LocalFileSystem) Dir(name string) string {
	return Dir(name)
}

// IsNotExist also reports true when a parent of the name is a regular file.
func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func (lfs *LocalFileSystem) Join(name ...string) string {
	return filepath.Join(name...)
}

func (lfs *LocalFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	return lfs.fs.MkdirAll(name, mode)
}

func (lfs *LocalFileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	f, err := lfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return NewLocalFile(f, lfs.Join(lfs.root, name)), nil
}

func (lfs *LocalFileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	f, err := lfs.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return NewLocalFile(f, lfs.Join(lfs.root, name)), nil
}

// ReadDir returns the entries of the directory sorted by name.
// Symbolic links are not followed.
func (lfs *LocalFileSystem) ReadDir(ctx context.Context, name string) ([]fs.FileInfo, error) {
	readDirOutput, err := afero.ReadDir(lfs.fs, name)
	if err != nil {
		return nil, err
	}
	fileInfos := make([]fs.FileInfo, 0, len(readDirOutput))
	for _, fi := range readDirOutput {
		fileInfos = append(fileInfos, NewLocalFileInfo(fi))
	}
	return fileInfos, nil
}

func (lfs *LocalFileSystem) Remove(ctx context.Context, name string) error {
	return lfs.fs.Remove(name)
}

func (lfs *LocalFileSystem) Root() string {
	return lfs.root
}

// Stat follows symbolic links.
func (lfs *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	return NewLocalFileInfo(fi), nil
}

// NewLocalFileSystemFromFs returns a filesystem rooted at rootPath within base.
// If readOnly is true, then every write returns an error.
func NewLocalFileSystemFromFs(base afero.Fs, rootPath string, readOnly bool) *LocalFileSystem {
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}
	if readOnly {
		base = afero.NewReadOnlyFs(base)
	}
	return &LocalFileSystem{
		fs:   afero.NewBasePathFs(base, rootPath),
		root: rootPath,
	}
}

func NewReadOnlyLocalSystem(rootPath string) *LocalFileSystem {
	return NewLocalFileSystemFromFs(afero.NewOsFs(), rootPath, true)
}

// NewFactory returns a factory for filesystems rooted within base.
func NewFactory(base afero.Fs) fs.FileSystemFactory {
	return func(root string, readOnly bool) fs.FileSystem {
		return NewLocalFileSystemFromFs(base, root, readOnly)
	}
}
