// SPDX-License-Identifier: MPL-2.0

package enumerate

import "slices"

type (
	// FileList is an ordered, read-only sequence of file paths. It has no
	// capacity limit; a list is produced once by a Builder and shared by every
	// worker of a run without copying or locking.
	FileList struct {
		paths []string
	}

	// Builder accumulates paths in order. Build hands out an independent
	// FileList, so later Adds never change a list that was already built.
	Builder struct {
		paths []string
	}
)

// NewFileList builds a FileList from the given paths.
func NewFileList(paths ...string) FileList {
	return FileList{paths: slices.Clone(paths)}
}

// Add appends a path.
func (b *Builder) Add(path string) {
	b.paths = append(b.paths, path)
}

// Len returns the number of paths added so far.
func (b *Builder) Len() int {
	return len(b.paths)
}

// Build returns the accumulated paths as a FileList.
func (b *Builder) Build() FileList {
	return FileList{paths: slices.Clone(b.paths)}
}

// Len returns the number of files.
func (l FileList) Len() int {
	return len(l.paths)
}

// At returns the path at index i. It panics when i is out of range, like
// slice indexing.
func (l FileList) At(i int) string {
	return l.paths[i]
}

// Slice returns a copy of the paths in [start, end).
func (l FileList) Slice(start, end int) []string {
	return slices.Clone(l.paths[start:end])
}

// Paths returns a copy of every path in order.
func (l FileList) Paths() []string {
	return slices.Clone(l.paths)
}
