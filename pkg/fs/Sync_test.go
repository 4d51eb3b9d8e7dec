// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/gomirror/pkg/fs"
	"github.com/navwar/gomirror/pkg/lfs"
)

func TestSyncNewFile(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a.txt"}, report.Copied)
	assert.Equal(t, "X", readFile(t, mem, "/dst/a.txt"))
	assert.True(t, t0.Equal(modTime(t, mem, "/dst/a.txt")))
	assert.Equal(t, int64(1), report.Written)
}

func TestSyncNestedDirectories(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a/b/c.txt", "abc", t0)
	writeFile(t, mem, "/src/d.txt", "d", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.ElementsMatch(t, []string{"/dst/a/b/c.txt", "/dst/d.txt"}, report.Copied)
	assert.Equal(t, "abc", readFile(t, mem, "/dst/a/b/c.txt"))
}

func TestSyncDeletesOrphan(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/dst/b.txt", "Y", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/b.txt"}, report.Deleted)
	assert.False(t, exists(t, mem, "/dst/b.txt"))
	assert.True(t, exists(t, mem, "/dst/a.txt"))
}

func TestSyncExcluded(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/c.bak", "source", t0)
	writeFile(t, mem, "/dst/c.bak", "destination", t1)
	writeFile(t, mem, "/src/only.fdb", "source", t0)
	writeFile(t, mem, "/dst/only.settings", "destination", t1)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Empty(t, report.Copied)
	assert.Empty(t, report.Deleted)
	assert.Equal(t, "source", readFile(t, mem, "/src/c.bak"))
	assert.Equal(t, "destination", readFile(t, mem, "/dst/c.bak"))
	assert.False(t, exists(t, mem, "/dst/only.fdb"))
	assert.True(t, exists(t, mem, "/dst/only.settings"))
}

func TestSyncVendoredNotDeleted(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/dst/SDK/vendor.lib", "vendor", t0)
	writeFile(t, mem, "/dst/SDK/old.bff", "config", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.True(t, exists(t, mem, "/dst/SDK/vendor.lib"))
	assert.Equal(t, []string{"/dst/SDK/old.bff"}, report.Deleted)
}

func TestSyncVendoredStillCopied(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/SDK/vendor.lib", "vendor", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/SDK/vendor.lib"}, report.Copied)
}

func TestSyncVersionControlNotDeleted(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/dst/.git/HEAD", "ref: refs/heads/main", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Empty(t, report.Deleted)
	assert.True(t, exists(t, mem, "/dst/.git/HEAD"))
}

func TestSyncIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/src/b/c.txt", "C", t1)
	writeFile(t, mem, "/dst/orphan.txt", "O", t0)

	first := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, first.OK(), first.Err())
	assert.Equal(t, 3, first.Changes())

	second := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, second.OK(), second.Err())
	assert.Equal(t, 0, second.Changes())
}

func TestSyncIdenticalContentDifferentTimestamp(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "same", t0)
	writeFile(t, mem, "/dst/a.txt", "same", t1)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Empty(t, report.Copied)
	assert.Equal(t, []string{"/dst/a.txt"}, report.Touched)
	assert.Equal(t, int64(0), report.Written)
	assert.True(t, t0.Equal(modTime(t, mem, "/dst/a.txt")))

	second := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, second.OK(), second.Err())
	assert.Equal(t, 0, second.Changes())
}

func TestSyncModifiedSameSize(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "new", t1)
	writeFile(t, mem, "/dst/a.txt", "old", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a.txt"}, report.Copied)
	assert.Equal(t, "new", readFile(t, mem, "/dst/a.txt"))
	assert.True(t, t1.Equal(modTime(t, mem, "/dst/a.txt")))
}

func TestSyncEqualTimestampSkipsContent(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "new content", t0)
	writeFile(t, mem, "/dst/a.txt", "old", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Empty(t, report.Copied)
	assert.Equal(t, "old", readFile(t, mem, "/dst/a.txt"))
}

func TestSyncReadOnlyDestination(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "new", t1)
	writeFile(t, mem, "/dst/a.txt", "old!", t0)
	require.NoError(t, mem.Chmod("/dst/a.txt", 0444))

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, "new", readFile(t, mem, "/dst/a.txt"))
	fi, err := mem.Stat("/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "-rw-r--r--", fi.Mode().Perm().String())
}

func TestSyncMissingSourceRoot(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/missing", "/dst1"), pair("/src", "/dst2")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/missing"}, report.Missing)
	assert.Equal(t, []string{"/dst2/a.txt"}, report.Copied)
}

func TestSyncMissingSourceRootPrunes(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/dst/a.txt", "X", t0)
	writeFile(t, mem, "/dst/a.bak", "X", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/missing", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a.txt"}, report.Deleted)
	assert.True(t, exists(t, mem, "/dst/a.bak"))
}

func TestSyncDryRun(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/src/same.txt", "S", t0)
	writeFile(t, mem, "/dst/same.txt", "S", t1)
	writeFile(t, mem, "/dst/b.txt", "Y", t0)

	input := syncInput(mem, pair("/src", "/dst"))
	input.DryRun = true
	report := fs.Sync(ctx, input)
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a.txt"}, report.Copied)
	assert.Equal(t, []string{"/dst/same.txt"}, report.Touched)
	assert.Equal(t, []string{"/dst/b.txt"}, report.Deleted)
	assert.False(t, exists(t, mem, "/dst/a.txt"))
	assert.True(t, exists(t, mem, "/dst/b.txt"))
	assert.True(t, t1.Equal(modTime(t, mem, "/dst/same.txt")))
}

func TestSyncSingleFile(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/.travis.yml", "language: go", t0)
	writeFile(t, mem, "/dst/other.txt", "keep", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src/.travis.yml", "/dst/.travis.yml")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/.travis.yml"}, report.Copied)
	assert.Empty(t, report.Deleted)
	assert.True(t, exists(t, mem, "/dst/other.txt"))

	require.NoError(t, mem.Remove("/src/.travis.yml"))
	report = fs.Sync(ctx, syncInput(mem, pair("/src/.travis.yml", "/dst/.travis.yml")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/.travis.yml"}, report.Deleted)
	assert.True(t, exists(t, mem, "/dst/other.txt"))
}

func TestSyncPerRootFilter(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.bak", "X", t0)

	p := pair("/src", "/dst")
	p.Filter = noRules{}
	report := fs.Sync(ctx, syncInput(mem, p))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a.bak"}, report.Copied)
}

func TestSyncErrorsDoNotStopRun(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)
	writeFile(t, mem, "/src/b.txt", "Y", t0)
	writeFile(t, mem, "/dst/c.txt", "Z", t0)

	input := syncInput(mem, pair("/src", "/dst"))
	// every filesystem is read-only, so every write fails
	input.NewFileSystem = func(root string, readOnly bool) fs.FileSystem {
		return lfs.NewLocalFileSystemFromFs(mem, root, true)
	}
	report := fs.Sync(ctx, input)

	assert.False(t, report.OK())
	require.Len(t, report.Errors, 3)
	kinds := []fs.ErrorKind{}
	for _, err := range report.Errors {
		var fileError *fs.FileError
		require.True(t, errors.As(err, &fileError))
		kinds = append(kinds, fileError.Kind)
	}
	assert.Equal(t, []fs.ErrorKind{fs.WriteFailure, fs.WriteFailure, fs.DeleteFailure}, kinds)
	assert.Empty(t, report.Copied)
	assert.Empty(t, report.Deleted)
	assert.True(t, exists(t, mem, "/dst/c.txt"))
	assert.Error(t, report.Err())
}

func TestSyncFileReplacesDirectory(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/x", "X", t0)
	writeFile(t, mem, "/dst/x/y", "Y", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/x/y"}, report.Deleted)
	assert.Equal(t, []string{"/dst/x"}, report.Copied)
	assert.Equal(t, "X", readFile(t, mem, "/dst/x"))

	report = fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())
	assert.Equal(t, 0, report.Changes())
}

func TestSyncFileReplacesDirectoryDryRun(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/x", "X", t0)
	writeFile(t, mem, "/dst/x/a/y", "Y", t0)

	input := syncInput(mem, pair("/src", "/dst"))
	input.DryRun = true
	report := fs.Sync(ctx, input)
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/x/a/y"}, report.Deleted)
	assert.Equal(t, []string{"/dst/x"}, report.Copied)
	assert.Equal(t, "Y", readFile(t, mem, "/dst/x/a/y"))
}

func TestSyncDirectoryReplacesFile(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a/b/c.txt", "C", t0)
	writeFile(t, mem, "/dst/a", "A", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/a"}, report.Deleted)
	assert.Equal(t, []string{"/dst/a/b/c.txt"}, report.Copied)
	assert.Equal(t, "C", readFile(t, mem, "/dst/a/b/c.txt"))

	report = fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))
	require.True(t, report.OK(), report.Err())
	assert.Equal(t, 0, report.Changes())
}

func TestSyncDirectoryWithProtectedFile(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/x", "X", t0)
	writeFile(t, mem, "/dst/x/.git/HEAD", "ref", t0)
	writeFile(t, mem, "/dst/x/y", "Y", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))

	assert.False(t, report.OK())
	require.Len(t, report.Errors, 1)
	var fileError *fs.FileError
	require.True(t, errors.As(report.Errors[0], &fileError))
	assert.Equal(t, fs.WriteFailure, fileError.Kind)
	assert.Equal(t, "/dst/x", fileError.Path)
	assert.Equal(t, []string{"/dst/x/y"}, report.Deleted)
	assert.Empty(t, report.Copied)
	assert.Equal(t, "ref", readFile(t, mem, "/dst/x/.git/HEAD"))
}

func TestSyncSingleFileReplacesDirectory(t *testing.T) {
	ctx := context.Background()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/.travis.yml", "language: go", t0)
	writeFile(t, mem, "/dst/.travis.yml/old.txt", "old", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src/.travis.yml", "/dst/.travis.yml")))
	require.True(t, report.OK(), report.Err())

	assert.Equal(t, []string{"/dst/.travis.yml/old.txt"}, report.Deleted)
	assert.Equal(t, []string{"/dst/.travis.yml"}, report.Copied)
	assert.Equal(t, "language: go", readFile(t, mem, "/dst/.travis.yml"))
}

func TestSyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/src/a.txt", "X", t0)

	report := fs.Sync(ctx, syncInput(mem, pair("/src", "/dst")))

	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], context.Canceled)
	assert.Empty(t, report.Copied)
	assert.False(t, exists(t, mem, "/dst/a.txt"))
}

type noRules struct{}

func (noRules) Excluded(p string) (string, bool) {
	return "", false
}

func (noRules) Protected(p string) (string, bool) {
	return "", false
}
