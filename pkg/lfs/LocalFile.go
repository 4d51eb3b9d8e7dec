// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"github.com/spf13/afero"
)

type LocalFile struct {
	file afero.File
	path string
}

func (lf *LocalFile) Close() error {
	return lf.file.Close()
}

// Name returns the path of the file including the root of the filesystem.
func (lf *LocalFile) Name() string {
	return lf.path
}

func (lf *LocalFile) Read(s []byte) (int, error) {
	return lf.file.Read(s)
}

func (lf *LocalFile) Write(s []byte) (int, error) {
	return lf.file.Write(s)
}

func NewLocalFile(file afero.File, path string) *LocalFile {
	return &LocalFile{
		file: file,
		path: path,
	}
}
