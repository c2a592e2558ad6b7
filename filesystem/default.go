package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

const defaultDirPerm os.FileMode = 0o777

// DefaultFileSystem forwards every call to the host operating system.
type DefaultFileSystem struct {
	logger *slog.Logger
}

type Option func(*DefaultFileSystem)

func WithLogger(logger *slog.Logger) Option {
	return func(fs *DefaultFileSystem) {
		fs.logger = logger
	}
}

func NewDefaultFileSystem(opts ...Option) *DefaultFileSystem {
	fs := DefaultFileSystem{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&fs)
	}
	return &fs
}

var _ FileSystem = (*DefaultFileSystem)(nil)

func (fs *DefaultFileSystem) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	file, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &DefaultFile{file: file}, nil
}

func (fs *DefaultFileSystem) Open(path string) (File, error) {
	return fs.OpenFile(path, os.O_RDONLY, 0)
}

// Dir opens a directory handle. The caller must close it.
func (fs *DefaultFileSystem) Dir(path string) (*Directory, error) {
	return openDirectory(path)
}

func (fs *DefaultFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// FileExists reports whether path exists, following symlinks.
func (fs *DefaultFileSystem) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fs *DefaultFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (fs *DefaultFileSystem) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (fs *DefaultFileSystem) Chmod(path string, perm os.FileMode) error {
	return os.Chmod(path, perm)
}

// Chown changes the owner of path. owner is a user name or a numeric uid.
func (fs *DefaultFileSystem) Chown(path, owner string) error {
	uid, err := lookupID(owner, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}
		return u.Uid, nil
	})
	if err != nil {
		return err
	}
	return os.Chown(path, uid, -1)
}

// Chgrp changes the group of path. group is a group name or a numeric gid.
func (fs *DefaultFileSystem) Chgrp(path, group string) error {
	gid, err := lookupID(group, func(name string) (string, error) {
		g, err := user.LookupGroup(name)
		if err != nil {
			return "", err
		}
		return g.Gid, nil
	})
	if err != nil {
		return err
	}
	return os.Chown(path, -1, gid)
}

func lookupID(nameOrID string, lookup func(string) (string, error)) (int, error) {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		return id, nil
	}
	id, err := lookup(nameOrID)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(id)
}

// Copy copies a single file, keeping its permission bits.
func (fs *DefaultFileSystem) Copy(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// ReadFile reads the content of a file from the actual filesystem
func (fs *DefaultFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadFileRange reads up to length bytes starting at offset.
// A negative length reads to the end of the file.
func (fs *DefaultFileSystem) ReadFileRange(path string, offset int64, length int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	if length < 0 {
		return io.ReadAll(file)
	}
	return io.ReadAll(io.LimitReader(file, int64(length)))
}

// WriteFile writes content to a file on the actual filesystem
func (fs *DefaultFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// AppendFile appends data to path, creating it with perm if needed.
func (fs *DefaultFileSystem) AppendFile(path string, data []byte, perm os.FileMode) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	_, err = file.Write(data)
	return err
}

// Realpath resolves path to an absolute path with all symlinks evaluated.
// The path must exist.
func (fs *DefaultFileSystem) Realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (fs *DefaultFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (fs *DefaultFileSystem) Rename(from, to string) error {
	return os.Rename(from, to)
}

func (fs *DefaultFileSystem) Rmdir(path string) error {
	return syscallRmdir(path)
}

func (fs *DefaultFileSystem) Unlink(path string) error {
	return syscallUnlink(path)
}

func (fs *DefaultFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (fs *DefaultFileSystem) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (fs *DefaultFileSystem) Mkdir(ctx context.Context, path string, perm os.FileMode, recursive bool) error {
	fs.logger.DebugContext(ctx, "Creating directory", slog.String("path", path), slog.Bool("recursive", recursive))
	return fs.mkdir(path, perm, recursive)
}

func (fs *DefaultFileSystem) mkdir(path string, perm os.FileMode, recursive bool) error {
	var err error
	if recursive {
		err = os.MkdirAll(path, perm)
	} else {
		err = os.Mkdir(path, perm)
	}
	if err != nil || !fs.IsDir(path) {
		return &IOError{Op: "mkdir", Path: path, Kind: ErrMkdir, Err: err}
	}
	return nil
}

func (fs *DefaultFileSystem) Cp(from, to string) error {
	if fs.IsDir(from) {
		return fs.CopyDirectory(from, to)
	}
	return fs.Copy(from, to)
}

func (fs *DefaultFileSystem) Mv(from, to string) error {
	return fs.Rename(from, to)
}

func (fs *DefaultFileSystem) Ls(path string) ([]string, error) {
	if path == "" {
		path = selfEntry
	}
	dir, err := fs.Dir(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = dir.Close()
	}()

	var entries []string
	for name, err := range dir.Entries() {
		if err != nil {
			return nil, err
		}
		entries = append(entries, name)
	}
	return entries, nil
}

// CopyDirectory never follows symlinks: a link inside the tree is recreated
// as a link, so link cycles cannot recurse forever. A failure part way
// leaves the partially copied destination in place.
func (fs *DefaultFileSystem) CopyDirectory(from, to string) error {
	if fs.IsDir(to) {
		return &IOError{Op: "copydir", Path: to, Kind: ErrDestinationExists, Err: os.ErrExist}
	}
	fs.logger.Debug("Copying directory", slog.String("from", from), slog.String("to", to))

	if err := fs.mkdir(to, defaultDirPerm, false); err != nil {
		return err
	}

	dir, err := fs.Dir(from)
	if err != nil {
		return err
	}
	defer func() {
		_ = dir.Close()
	}()

	for name, err := range dir.Entries() {
		if err != nil {
			return err
		}
		if isPseudoEntry(name) {
			continue
		}

		src := filepath.Join(from, name)
		dst := filepath.Join(to, name)
		info, err := os.Lstat(src)
		if err != nil {
			return err
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(src)
			if err != nil {
				return err
			}
			if err := os.Symlink(target, dst); err != nil {
				return err
			}
		case info.IsDir():
			if err := fs.CopyDirectory(src, dst); err != nil {
				return err
			}
		default:
			if err := fs.Copy(src, dst); err != nil {
				return fmt.Errorf("failed to copy %s: %w", src, err)
			}
		}
	}
	return nil
}

// Rm unlinks files and symlinks. A directory is removed with rmdir unless
// recursive is set, in which case its entries are removed depth-first
// first. The first failure stops the walk.
func (fs *DefaultFileSystem) Rm(ctx context.Context, path string, recursive bool) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fs.Unlink(path)
	}

	if recursive {
		fs.logger.DebugContext(ctx, "Removing directory tree", slog.String("path", path))
		if err := fs.removeEntries(ctx, path); err != nil {
			return err
		}
	}

	if err := fs.Rmdir(path); err != nil {
		if isNotEmpty(err) {
			return &IOError{Op: "rm", Path: path, Kind: ErrNotEmpty, Err: err}
		}
		return err
	}
	return nil
}

func (fs *DefaultFileSystem) removeEntries(ctx context.Context, path string) error {
	base, err := fs.Realpath(path)
	if err != nil {
		return err
	}

	dir, err := fs.Dir(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = dir.Close()
	}()

	for name, err := range dir.Entries() {
		if err != nil {
			return err
		}
		if isPseudoEntry(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fs.Rm(ctx, filepath.Join(base, name), true); err != nil {
			return err
		}
	}
	return nil
}

func isNotEmpty(err error) bool {
	return errors.Is(err, errDirNotEmpty) || errors.Is(err, errDirExist)
}
