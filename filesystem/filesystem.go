package filesystem

import (
	"context"
	"io"
	"os"
)

// FileSystem is the contract consumers depend on so that the host
// filesystem can be swapped for a fake in tests.
type FileSystem interface {
	// Mkdir creates path. With recursive set, missing ancestors are created too.
	// It fails with ErrMkdir when path is not a directory afterwards.
	Mkdir(ctx context.Context, path string, perm os.FileMode, recursive bool) error
	// Rm removes a file, or a directory. Directory contents are only removed
	// when recursive is set; otherwise a non-empty directory fails with ErrNotEmpty.
	Rm(ctx context.Context, path string, recursive bool) error
	// Cp copies a file, or delegates to CopyDirectory when from is a directory.
	Cp(from, to string) error
	// Mv renames from to to, whatever its type.
	Mv(from, to string) error
	// Ls lists the entries of path in enumeration order, including "." and "..".
	Ls(path string) ([]string, error)
	// CopyDirectory copies the tree rooted at from to a new directory to.
	// It fails with ErrDestinationExists when to is already a directory.
	CopyDirectory(from, to string) error
}

// File is an open file stream.
type File interface {
	io.ReadWriteSeeker
	io.Closer

	Name() string
	Tell() (int64, error)
	Rewind() error
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
	Flush() error
	EOF() (bool, error)
	Gets(limit int) (string, error)
}

const (
	selfEntry   = "."
	parentEntry = ".."
)

func isPseudoEntry(name string) bool {
	return name == selfEntry || name == parentEntry
}
