//go:build !unix

package filesystem

import (
	"errors"
	"os"
	"syscall"
)

var (
	errNotDirectory error = syscall.ENOTDIR
	errDirNotEmpty  error = syscall.ENOTEMPTY
	errDirExist     error = syscall.EEXIST
)

func (fs *DefaultFileSystem) IsReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func (fs *DefaultFileSystem) IsWritable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().Perm()&0o200 != 0
}

func (fs *DefaultFileSystem) Chroot(dir string) error {
	return &os.PathError{Op: "chroot", Path: dir, Err: errors.ErrUnsupported}
}

func syscallRmdir(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "rmdir", Path: path, Err: errNotDirectory}
	}
	return os.Remove(path)
}

func syscallUnlink(path string) error {
	return os.Remove(path)
}
