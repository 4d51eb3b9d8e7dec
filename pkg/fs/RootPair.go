// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// RootPair maps a source directory, or a single file, to its destination.
type RootPair struct {
	Source      string
	Destination string
	Filter      Filter // optional, overrides the filter of the run
}

func (rp RootPair) String() string {
	return fmt.Sprintf("%s -> %s", rp.Source, rp.Destination)
}

// FileSystemFactory returns a filesystem rooted at root.
// A read-only filesystem must reject every write.
type FileSystemFactory func(root string, readOnly bool) FileSystem

// mirrorRoot is a root pair resolved to a source and a destination filesystem.
// Source and destination names are related by root substitution.
type mirrorRoot struct {
	filter          Filter
	source          FileSystem
	sourceName      string
	sourceExists    bool
	destination     FileSystem
	destinationName string
}

func openRoot(ctx context.Context, pair RootPair, filter Filter, newFileSystem FileSystemFactory) (*mirrorRoot, error) {
	if pair.Filter != nil {
		filter = pair.Filter
	}
	if filter == nil {
		filter = noFilter{}
	}

	r := &mirrorRoot{
		filter:          filter,
		source:          newFileSystem(pair.Source, true),
		sourceName:      "/",
		destination:     newFileSystem(pair.Destination, false),
		destinationName: "/",
	}

	single := false
	sourceFileInfo, err := r.source.Stat(ctx, "/")
	switch {
	case err == nil:
		r.sourceExists = true
		single = !sourceFileInfo.IsDir()
	case r.source.IsNotExist(err):
		// without a source, the shape of the destination decides
		destinationFileInfo, err := r.destination.Stat(ctx, "/")
		if err != nil && !r.destination.IsNotExist(err) {
			return nil, fmt.Errorf("error stating destination root %q: %w", pair.Destination, err)
		}
		single = err == nil && !destinationFileInfo.IsDir()
	default:
		return nil, fmt.Errorf("error stating source root %q: %w", pair.Source, err)
	}

	if single {
		r.source = newFileSystem(filepath.Dir(pair.Source), true)
		r.sourceName = "/" + filepath.Base(pair.Source)
		r.destination = newFileSystem(filepath.Dir(pair.Destination), false)
		r.destinationName = "/" + filepath.Base(pair.Destination)
	}

	return r, nil
}

func (r *mirrorRoot) single() bool {
	return r.sourceName != "/"
}

func (r *mirrorRoot) destinationFor(sourceName string) string {
	if r.single() {
		return r.destinationName
	}
	return sourceName
}

// sourceFor substitutes the source root for the destination root.
// Below a single-file root, the result names a path under a regular file, which does not exist.
func (r *mirrorRoot) sourceFor(destinationName string) string {
	if r.single() {
		return r.sourceName + strings.TrimPrefix(destinationName, r.destinationName)
	}
	return destinationName
}

// rulePath is the path evaluated by the filter: relative to the source root,
// or the base name for a single file.
func (r *mirrorRoot) rulePath(sourceName string) string {
	if r.single() {
		return filepath.Base(sourceName)
	}
	return sourceName
}

func (r *mirrorRoot) sourcePath(name string) string {
	return r.source.Join(r.source.Root(), name)
}

func (r *mirrorRoot) destinationPath(name string) string {
	return r.destination.Join(r.destination.Root(), name)
}

// errStop stops an enumeration early.
var errStop = errors.New("stop")

// parentBlocker returns the name of a regular file in the destination where a parent directory of name belongs,
// or an empty string if there is none.  Files whose paths are in deleted count as removed.
func (r *mirrorRoot) parentBlocker(ctx context.Context, name string, deleted mapset.Set[string]) (string, error) {
	for dir := path.Dir(name); dir != "/" && dir != "."; dir = path.Dir(dir) {
		fi, err := r.destination.Stat(ctx, dir)
		if err != nil {
			if r.destination.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if fi.IsDir() || (deleted != nil && deleted.Contains(r.destinationPath(dir))) {
			return "", nil
		}
		return dir, nil
	}
	return "", nil
}

// remaining returns the path of the first file below the destination directory name
// that is not in deleted, or an empty string if every file is gone.
func (r *mirrorRoot) remaining(ctx context.Context, name string, deleted mapset.Set[string]) (string, error) {
	found := ""
	err := Enumerate(ctx, r.destination, name, func(record *Record, err error) error {
		if err != nil {
			return err
		}
		if !deleted.Contains(record.Path()) {
			found = record.Path()
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return found, nil
}
