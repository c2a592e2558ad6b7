package filesystem

import (
	"context"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"syscall"
)

// InMemoryFileSystem is a map-backed FileSystem for tests. Paths are
// slash-separated; relative paths are resolved against "/", which always exists.
type InMemoryFileSystem struct {
	files map[string]*InMemoryFile
	dirs  map[string]os.FileMode
}

func NewInMemoryFileSystem() *InMemoryFileSystem {
	return &InMemoryFileSystem{
		files: make(map[string]*InMemoryFile),
		dirs:  map[string]os.FileMode{"/": os.ModeDir | 0o755},
	}
}

var _ FileSystem = (*InMemoryFileSystem)(nil)

func cleanPath(name string) string {
	return path.Join("/", name)
}

// Exists checks if a file or directory exists in the in-memory filesystem
func (fs *InMemoryFileSystem) Exists(name string) bool {
	name = cleanPath(name)
	return fs.isFile(name) || fs.isDir(name)
}

func (fs *InMemoryFileSystem) isFile(name string) bool {
	_, ok := fs.files[name]
	return ok
}

func (fs *InMemoryFileSystem) isDir(name string) bool {
	_, ok := fs.dirs[name]
	return ok
}

// ReadFile reads the content of a file in the in-memory filesystem
func (fs *InMemoryFileSystem) ReadFile(name string) ([]byte, error) {
	if file, exists := fs.files[cleanPath(name)]; exists {
		return file.GetData(), nil
	}
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
}

// WriteFile writes content to a file in the in-memory filesystem. The parent
// directory must exist.
func (fs *InMemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	name = cleanPath(name)
	if fs.isDir(name) {
		return &os.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
	}
	if !fs.isDir(path.Dir(name)) {
		return &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	fs.files[name] = &InMemoryFile{data: slices.Clone(data), mode: perm}
	return nil
}

func (fs *InMemoryFileSystem) Mkdir(ctx context.Context, name string, perm os.FileMode, recursive bool) error {
	name = cleanPath(name)
	if fs.isFile(name) {
		return &IOError{Op: "mkdir", Path: name, Kind: ErrMkdir, Err: os.ErrExist}
	}
	if fs.isDir(name) {
		if recursive {
			return nil
		}
		return &IOError{Op: "mkdir", Path: name, Kind: ErrMkdir, Err: os.ErrExist}
	}

	parent := path.Dir(name)
	if !fs.isDir(parent) {
		if !recursive {
			return &IOError{Op: "mkdir", Path: name, Kind: ErrMkdir, Err: os.ErrNotExist}
		}
		if err := fs.Mkdir(ctx, parent, perm, true); err != nil {
			return err
		}
	}
	fs.dirs[name] = os.ModeDir | perm.Perm()
	return nil
}

func (fs *InMemoryFileSystem) Rm(ctx context.Context, name string, recursive bool) error {
	name = cleanPath(name)
	if fs.isFile(name) {
		delete(fs.files, name)
		return nil
	}
	if !fs.isDir(name) {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrNotExist}
	}
	if name == "/" {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}

	children := fs.children(name)
	if len(children) > 0 && !recursive {
		return &IOError{Op: "rm", Path: name, Kind: ErrNotEmpty}
	}
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fs.Rm(ctx, path.Join(name, child), true); err != nil {
			return err
		}
	}
	delete(fs.dirs, name)
	return nil
}

func (fs *InMemoryFileSystem) Cp(from, to string) error {
	from, to = cleanPath(from), cleanPath(to)
	if fs.isDir(from) {
		return fs.CopyDirectory(from, to)
	}
	return fs.copyFile(from, to)
}

func (fs *InMemoryFileSystem) copyFile(from, to string) error {
	src, ok := fs.files[from]
	if !ok {
		return &os.PathError{Op: "open", Path: from, Err: os.ErrNotExist}
	}
	return fs.WriteFile(to, src.data, src.mode)
}

// Mv follows os.Rename: a file replaces a file, a directory cannot be
// moved into its own subtree or onto a file, and renaming a path to
// itself is a no-op.
func (fs *InMemoryFileSystem) Mv(from, to string) error {
	from, to = cleanPath(from), cleanPath(to)
	linkErr := func(err error) error {
		return &os.LinkError{Op: "rename", Old: from, New: to, Err: err}
	}
	if !fs.Exists(from) {
		return linkErr(os.ErrNotExist)
	}
	if from == to {
		return nil
	}
	if fs.isDir(from) {
		if strings.HasPrefix(to, from+"/") || from == "/" {
			return linkErr(syscall.EINVAL)
		}
		if fs.isFile(to) {
			return linkErr(syscall.ENOTDIR)
		}
	}
	if !fs.isDir(path.Dir(to)) {
		return linkErr(os.ErrNotExist)
	}
	if fs.isDir(to) {
		return linkErr(os.ErrExist)
	}
	if file, ok := fs.files[from]; ok {
		delete(fs.files, from)
		fs.files[to] = file
		return nil
	}

	prefix := from + "/"
	moved := make(map[string]*InMemoryFile)
	for name, file := range fs.files {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			delete(fs.files, name)
			moved[path.Join(to, rest)] = file
		}
	}
	maps.Copy(fs.files, moved)

	movedDirs := make(map[string]os.FileMode)
	for name, mode := range fs.dirs {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			delete(fs.dirs, name)
			movedDirs[path.Join(to, rest)] = mode
		}
	}
	maps.Copy(fs.dirs, movedDirs)
	fs.dirs[to] = fs.dirs[from]
	delete(fs.dirs, from)
	return nil
}

// Ls returns "." and ".." followed by the children sorted by name.
func (fs *InMemoryFileSystem) Ls(name string) ([]string, error) {
	name = cleanPath(name)
	if !fs.isDir(name) {
		return nil, &os.PathError{Op: "opendir", Path: name, Err: os.ErrNotExist}
	}
	return append([]string{selfEntry, parentEntry}, fs.children(name)...), nil
}

func (fs *InMemoryFileSystem) CopyDirectory(from, to string) error {
	from, to = cleanPath(from), cleanPath(to)
	if fs.isDir(to) {
		return &IOError{Op: "copydir", Path: to, Kind: ErrDestinationExists, Err: os.ErrExist}
	}
	if !fs.isDir(from) {
		return &os.PathError{Op: "opendir", Path: from, Err: os.ErrNotExist}
	}
	if err := fs.Mkdir(context.Background(), to, fs.dirs[from].Perm(), false); err != nil {
		return err
	}
	for _, child := range fs.children(from) {
		src, dst := path.Join(from, child), path.Join(to, child)
		if fs.isDir(src) {
			if err := fs.CopyDirectory(src, dst); err != nil {
				return err
			}
			continue
		}
		if err := fs.copyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (fs *InMemoryFileSystem) children(dir string) []string {
	var names []string
	for name := range fs.files {
		if name != dir && path.Dir(name) == dir {
			names = append(names, path.Base(name))
		}
	}
	for name := range fs.dirs {
		if name != dir && path.Dir(name) == dir {
			names = append(names, path.Base(name))
		}
	}
	slices.Sort(names)
	return names
}

type InMemoryFile struct {
	data []byte
	mode os.FileMode
}

func (f *InMemoryFile) GetData() []byte {
	return f.data
}
