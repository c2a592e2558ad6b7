package filesystem

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInMemoryFileSystem(t *testing.T) {
	fs := NewInMemoryFileSystem()
	assert.NotNil(t, fs)
	assert.Equal(t, 0, len(fs.files))
	assert.True(t, fs.Exists("/"))

	entries, err := fs.Ls("/")
	require.NoError(t, err)
	assert.Equal(t, []string{".", ".."}, entries)
}

func TestInMemoryFileSystem_Mkdir(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setup     func(fs *InMemoryFileSystem)
		path      string
		recursive bool
		expectErr bool
	}{
		{name: "top level", path: "/a"},
		{name: "relative path", path: "a"},
		{name: "missing parent", path: "/a/b", expectErr: true},
		{name: "missing parent recursive", path: "/a/b/c", recursive: true},
		{
			name:      "existing directory",
			setup:     func(fs *InMemoryFileSystem) { require.NoError(t, fs.Mkdir(ctx, "/a", 0o755, false)) },
			path:      "/a",
			expectErr: true,
		},
		{
			name:      "existing directory recursive",
			setup:     func(fs *InMemoryFileSystem) { require.NoError(t, fs.Mkdir(ctx, "/a", 0o755, false)) },
			path:      "/a",
			recursive: true,
		},
		{
			name:      "file in the way",
			setup:     func(fs *InMemoryFileSystem) { require.NoError(t, fs.WriteFile("/a", []byte("x"), 0o644)) },
			path:      "/a/b",
			recursive: true,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewInMemoryFileSystem()
			if tt.setup != nil {
				tt.setup(fs)
			}

			err := fs.Mkdir(ctx, tt.path, 0o755, tt.recursive)

			if tt.expectErr {
				assert.ErrorIs(t, err, ErrMkdir)
				return
			}
			require.NoError(t, err)
			assert.True(t, fs.isDir(cleanPath(tt.path)))
		})
	}
}

func TestInMemoryFileSystem_WriteAndReadFile(t *testing.T) {
	fs := NewInMemoryFileSystem()
	data := []byte("content")

	require.NoError(t, fs.WriteFile("/f.txt", data, 0o644))
	data[0] = 'X'

	got, err := fs.ReadFile("f.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))

	_, err = fs.ReadFile("/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, fs.WriteFile("/no/parent.txt", data, 0o644), os.ErrNotExist)

	require.NoError(t, fs.Mkdir(context.Background(), "/dir", 0o755, false))
	assert.ErrorIs(t, fs.WriteFile("/dir", data, 0o644), syscall.EISDIR)
}

func TestInMemoryFileSystem_RmAndCopy(t *testing.T) {
	ctx := context.Background()
	fs := NewInMemoryFileSystem()
	require.NoError(t, fs.Mkdir(ctx, "/src/nested/deep", 0o755, true))
	require.NoError(t, fs.WriteFile("/src/top.txt", []byte("top"), 0o644))
	require.NoError(t, fs.WriteFile("/src/nested/deep/leaf.txt", []byte("leaf"), 0o600))

	require.NoError(t, fs.CopyDirectory("/src", "/dst"))

	got, err := fs.ReadFile("/dst/nested/deep/leaf.txt")
	require.NoError(t, err)
	assert.Equal(t, "leaf", string(got))
	entries, err := fs.Ls("/dst")
	require.NoError(t, err)
	assert.Equal(t, []string{".", "..", "nested", "top.txt"}, entries)

	err = fs.CopyDirectory("/src", "/dst")
	assert.ErrorIs(t, err, ErrDestinationExists)

	err = fs.Rm(ctx, "/dst", false)
	assert.ErrorIs(t, err, ErrNotEmpty)
	assert.True(t, fs.Exists("/dst/top.txt"))

	require.NoError(t, fs.Rm(ctx, "/dst", true))
	assert.False(t, fs.Exists("/dst"))
	assert.False(t, fs.Exists("/dst/nested/deep/leaf.txt"))
	assert.True(t, fs.Exists("/src/nested/deep/leaf.txt"))

	assert.ErrorIs(t, fs.Rm(ctx, "/dst", true), os.ErrNotExist)
	assert.ErrorIs(t, fs.Rm(ctx, "/", true), os.ErrPermission)
}

func TestInMemoryFileSystem_CpFile(t *testing.T) {
	fs := NewInMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/a.txt", []byte("a"), 0o644))

	require.NoError(t, fs.Cp("/a.txt", "/b.txt"))

	got, err := fs.ReadFile("/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
	assert.ErrorIs(t, fs.Cp("/missing", "/c.txt"), os.ErrNotExist)
}

func TestInMemoryFileSystem_Mv(t *testing.T) {
	ctx := context.Background()
	fs := NewInMemoryFileSystem()
	require.NoError(t, fs.Mkdir(ctx, "/dir/sub", 0o755, true))
	require.NoError(t, fs.WriteFile("/dir/sub/f.txt", []byte("f"), 0o644))
	require.NoError(t, fs.WriteFile("/single.txt", []byte("s"), 0o644))

	require.NoError(t, fs.Mv("/dir", "/renamed"))
	require.NoError(t, fs.Mv("/single.txt", "/renamed/single.txt"))

	assert.False(t, fs.Exists("/dir"))
	assert.False(t, fs.Exists("/dir/sub/f.txt"))
	assert.True(t, fs.Exists("/renamed/sub"))
	got, err := fs.ReadFile("/renamed/sub/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "f", string(got))
	assert.True(t, fs.Exists("/renamed/single.txt"))

	assert.ErrorIs(t, fs.Mv("/missing", "/x"), os.ErrNotExist)
	assert.ErrorIs(t, fs.Mv("/renamed/single.txt", "/renamed/sub"), os.ErrExist)
	assert.ErrorIs(t, fs.Mv("/renamed/single.txt", "/nowhere/single.txt"), os.ErrNotExist)
	require.NoError(t, fs.Mv("/renamed", "/renamed"))
	assert.True(t, fs.Exists("/renamed/sub/f.txt"))
}

func TestInMemoryFileSystem_Mv_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		to        string
		errorType error
	}{
		{name: "directory into itself", from: "/a", to: "/a/b", errorType: syscall.EINVAL},
		{name: "directory into nested subtree", from: "/a", to: "/a/x/moved", errorType: syscall.EINVAL},
		{name: "root", from: "/", to: "/elsewhere", errorType: syscall.EINVAL},
		{name: "directory onto file", from: "/a", to: "/file.txt", errorType: syscall.ENOTDIR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fs := NewInMemoryFileSystem()
			require.NoError(t, fs.Mkdir(ctx, "/a/x", 0o755, true))
			require.NoError(t, fs.WriteFile("/a/x/f", []byte("f"), 0o644))
			require.NoError(t, fs.WriteFile("/file.txt", []byte("keep"), 0o644))

			err := fs.Mv(tt.from, tt.to)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.errorType)
			var linkErr *os.LinkError
			assert.ErrorAs(t, err, &linkErr)

			entries, err := fs.Ls("/")
			require.NoError(t, err)
			assert.Equal(t, []string{".", "..", "a", "file.txt"}, entries)
			assert.True(t, fs.Exists("/a/x/f"))
			assert.False(t, fs.Exists("/a/b"))
			data, err := fs.ReadFile("/file.txt")
			require.NoError(t, err)
			assert.Equal(t, "keep", string(data))
		})
	}
}

func TestInMemoryFileSystem_RmCancelled(t *testing.T) {
	fs := NewInMemoryFileSystem()
	require.NoError(t, fs.Mkdir(context.Background(), "/t", 0o755, false))
	require.NoError(t, fs.WriteFile("/t/a", nil, 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fs.Rm(ctx, "/t", true), context.Canceled)
	assert.True(t, fs.Exists("/t/a"))
}

func TestInMemoryFileSystem_InterfaceCompliance(t *testing.T) {
	var _ FileSystem = (*InMemoryFileSystem)(nil)
	var _ FileSystem = (*DefaultFileSystem)(nil)
	var _ File = (*DefaultFile)(nil)
}
