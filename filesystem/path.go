package filesystem

import (
	"path/filepath"
	"strings"
)

// PathInfo holds the components of a path.
type PathInfo struct {
	Dirname   string
	Basename  string
	Extension string
	Filename  string
}

// Basename returns the last element of path with suffix removed, unless
// the element is exactly suffix.
func (fs *DefaultFileSystem) Basename(path, suffix string) string {
	base := filepath.Base(path)
	if suffix != "" && base != suffix {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

// Dirname returns the parent of path, levels directories up.
func (fs *DefaultFileSystem) Dirname(path string, levels int) string {
	for range max(levels, 1) {
		path = filepath.Dir(path)
	}
	return path
}

func (fs *DefaultFileSystem) PathInfo(path string) PathInfo {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return PathInfo{
		Dirname:   filepath.Dir(path),
		Basename:  base,
		Extension: strings.TrimPrefix(ext, "."),
		Filename:  strings.TrimSuffix(base, ext),
	}
}
