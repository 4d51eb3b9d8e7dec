// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

type CopyInput struct {
	SourceName            string
	SourceFileInfo        FileInfo // optional, stated if nil
	SourceFileSystem      FileSystem
	DestinationName       string
	DestinationFileSystem FileSystem
	Logger                Logger
	MakeParents           bool
}

type CopyOutput struct {
	Written  int64
	Warnings []error // failures that did not stop the copy
}
