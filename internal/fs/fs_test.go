package fs

import (
	"context"
	"os"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

func TestKindOf(t *testing.T) {
	t.Parallel()
	require.Equal(t, idl.FileKindWebIDL, KindOf("/a/dom.webidl"))
	require.Equal(t, idl.FileKindWebIDL, KindOf("html.IDL"))
	require.Equal(t, idl.FileKindCatalog, KindOf("attrs.yaml"))
	require.Equal(t, idl.FileKindCatalog, KindOf("attrs.yml"))
	require.Equal(t, idl.FileKindNone, KindOf("README.md"))
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "specs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "b.webidl"), []byte("interface B {};"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "a.idl"), []byte("interface A {};"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "specs", "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "attrs.yaml"), []byte("attributes: []\n"), 0o644))

	local, err := NewFileSystemLocal(root)
	require.NoError(t, err)

	files, err := local.Open(ctx, "/specs")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "/specs/a.idl", files[0].Path(ctx))
	require.Equal(t, "/specs/b.webidl", files[1].Path(ctx))

	content, err := ReadAll(ctx, files[1])
	require.NoError(t, err)
	require.Equal(t, "interface B {};", string(content))

	files, err = local.Open(ctx, "file:///attrs.yaml")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, idl.FileKindCatalog, files[0].Kind(ctx))

	_, err = local.Open(ctx, "/missing.webidl")
	require.Error(t, err)
	e, ok := err.(exc.Exception)
	require.True(t, ok)
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	require.NoError(t, local.Write(ctx, "/out/model.yaml", "productions: []\n"))
	written, err := os.ReadFile(filepath.Join(root, "out", "model.yaml"))
	require.NoError(t, err)
	require.Equal(t, "productions: []\n", string(written))
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	first, err := NewFileSystemLocal(t.TempDir())
	require.NoError(t, err)
	secondRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secondRoot, "x.webidl"), []byte("enum E { \"a\" };"), 0o644))
	second, err := NewFileSystemLocal(secondRoot)
	require.NoError(t, err)

	multi := FileSystemMulti{first, second}
	files, err := multi.Open(ctx, "/x.webidl")
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = multi.Open(ctx, "/y.webidl")
	require.Error(t, err)
	require.Error(t, multi.Write(ctx, "/y.webidl", ""))
}

func TestFileString(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := NewFileString("/mem.webidl", "typedef long Count;", idl.FileKindWebIDL)
	require.Equal(t, idl.FileKindWebIDL, f.Kind(ctx))
	content, err := ReadAll(ctx, f)
	require.NoError(t, err)
	require.Equal(t, "typedef long Count;", string(content))

	b := NewFileBytes("/c.yml", []byte("attributes: []"))
	require.Equal(t, idl.FileKindCatalog, b.Kind(ctx))
}

func TestFileSystemLocalOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := fstest.MapFS{
		"specs/a.webidl":     {Data: []byte("interface A {};")},
		"specs/attrs.yaml":   {Data: []byte("attributes: []\n")},
		"specs/legacy.idl":   {Data: []byte("interface L {};")},
		"specs/nested/x.idl": {Data: []byte("interface X {};")},
	}
	local, err := NewFileSystemLocal("/virtual",
		WithOptionFSFactory(func(root string) fs.FS { return mem }),
		WithOptionFileFilter(func(ctx context.Context, fname string) bool {
			return !strings.HasSuffix(fname, ".idl")
		}),
	)
	require.NoError(t, err)

	files, err := local.Open(ctx, "/specs")
	require.NoError(t, err)
	paths := []string{}
	for _, f := range files {
		paths = append(paths, f.Path(ctx))
	}
	require.Equal(t, []string{"/specs/a.webidl", "/specs/attrs.yaml"}, paths)
	require.Equal(t, idl.FileKindCatalog, files[1].Kind(ctx))

	content, err := ReadAll(ctx, files[0])
	require.NoError(t, err)
	require.Equal(t, "interface A {};", string(content))
}
