package filesystem

import (
	"io"
	"os"
	"strings"
)

type DefaultFile struct {
	file *os.File
}

var _ File = (*DefaultFile)(nil)

func (f *DefaultFile) Name() string {
	return f.file.Name()
}

func (f *DefaultFile) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

func (f *DefaultFile) Write(data []byte) (int, error) {
	return f.file.Write(data)
}

func (f *DefaultFile) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// Tell returns the current offset.
func (f *DefaultFile) Tell() (int64, error) {
	return f.file.Seek(0, io.SeekCurrent)
}

func (f *DefaultFile) Rewind() error {
	_, err := f.file.Seek(0, io.SeekStart)
	return err
}

func (f *DefaultFile) Truncate(size int64) error {
	return f.file.Truncate(size)
}

func (f *DefaultFile) Stat() (os.FileInfo, error) {
	return f.file.Stat()
}

// Flush commits the written data to stable storage.
func (f *DefaultFile) Flush() error {
	return f.file.Sync()
}

// EOF reports whether the offset is at or past the end of the file. It
// compares the offset with the current size, so it is already true on an
// empty file before any read, unlike a flag set by a read hitting the end.
func (f *DefaultFile) EOF() (bool, error) {
	offset, err := f.Tell()
	if err != nil {
		return false, err
	}
	info, err := f.file.Stat()
	if err != nil {
		return false, err
	}
	return offset >= info.Size(), nil
}

// Gets reads a single line, newline included. A positive limit caps the
// number of bytes read. It returns io.EOF only when nothing was read.
func (f *DefaultFile) Gets(limit int) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for limit <= 0 || sb.Len() < limit {
		n, err := f.file.Read(buf)
		if n > 0 {
			sb.WriteByte(buf[0])
			if buf[0] == '\n' {
				break
			}
		}
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

func (f *DefaultFile) Close() error {
	return f.file.Close()
}
