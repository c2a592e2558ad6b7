//go:build unix

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"
)

var (
	errNotDirectory error = unix.ENOTDIR
	errDirNotEmpty  error = unix.ENOTEMPTY
	errDirExist     error = unix.EEXIST
)

// IsReadable reports whether the calling process may read path.
func (fs *DefaultFileSystem) IsReadable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}

// IsWritable reports whether the calling process may write path.
func (fs *DefaultFileSystem) IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// Chroot changes the root directory of the whole process.
func (fs *DefaultFileSystem) Chroot(dir string) error {
	if err := unix.Chroot(dir); err != nil {
		return &os.PathError{Op: "chroot", Path: dir, Err: err}
	}
	return nil
}

func syscallRmdir(path string) error {
	if err := unix.Rmdir(path); err != nil {
		return &os.PathError{Op: "rmdir", Path: path, Err: err}
	}
	return nil
}

func syscallUnlink(path string) error {
	if err := unix.Unlink(path); err != nil {
		return &os.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}
