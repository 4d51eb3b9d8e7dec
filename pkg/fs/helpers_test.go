// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs_test

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/navwar/gomirror/pkg/fs"
	"github.com/navwar/gomirror/pkg/lfs"
	"github.com/navwar/gomirror/pkg/rules"
)

var (
	t0 = time.Date(2020, time.January, 2, 3, 4, 5, 600, time.UTC)
	t1 = time.Date(2021, time.February, 3, 4, 5, 6, 700, time.UTC)
)

func writeFile(t *testing.T, mem afero.Fs, name string, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(mem, name, []byte(content), 0644))
	require.NoError(t, mem.Chtimes(name, modTime, modTime))
}

func readFile(t *testing.T, mem afero.Fs, name string) string {
	t.Helper()
	b, err := afero.ReadFile(mem, name)
	require.NoError(t, err)
	return string(b)
}

func modTime(t *testing.T, mem afero.Fs, name string) time.Time {
	t.Helper()
	fi, err := mem.Stat(name)
	require.NoError(t, err)
	return fi.ModTime()
}

func exists(t *testing.T, mem afero.Fs, name string) bool {
	t.Helper()
	_, err := mem.Stat(name)
	if os.IsNotExist(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func syncInput(mem afero.Fs, pairs ...fs.RootPair) *fs.SyncInput {
	return &fs.SyncInput{
		Roots:         pairs,
		Filter:        rules.Default(),
		NewFileSystem: lfs.NewFactory(mem),
	}
}

func pair(source string, destination string) fs.RootPair {
	return fs.RootPair{Source: source, Destination: destination}
}
