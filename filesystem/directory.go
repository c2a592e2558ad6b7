package filesystem

import (
	"errors"
	"io"
	"iter"
	"os"
)

// Directory is an open directory handle. Entries are read one at a time,
// the pseudo-entries "." and ".." first. The caller owns the handle and
// must Close it.
type Directory struct {
	path    string
	file    *os.File
	pending []string
}

func openDirectory(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if !info.IsDir() {
		_ = file.Close()
		return nil, &os.PathError{Op: "opendir", Path: path, Err: errNotDirectory}
	}
	return &Directory{
		path:    path,
		file:    file,
		pending: []string{selfEntry, parentEntry},
	}, nil
}

// Path returns the path the handle was opened with.
func (d *Directory) Path() string {
	return d.path
}

// Read returns the next entry name, or io.EOF once the directory is exhausted.
func (d *Directory) Read() (string, error) {
	if len(d.pending) > 0 {
		name := d.pending[0]
		d.pending = d.pending[1:]
		return name, nil
	}
	names, err := d.file.Readdirnames(1)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// Entries yields the remaining entries. The sequence stops after the first
// error and cannot be restarted without reopening the directory.
func (d *Directory) Entries() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			name, err := d.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(name, err) || err != nil {
				return
			}
		}
	}
}

func (d *Directory) Close() error {
	return d.file.Close()
}
