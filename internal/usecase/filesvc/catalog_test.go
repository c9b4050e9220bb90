package filesvc

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sir_venger/flatstore/internal/models"
	"github.com/stretchr/testify/require"
)

func TestList_ContainsIngestedFiles(t *testing.T) {
	s, _ := newFiles(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := s.Ingest(ctx, name, bytes.NewReader([]byte(name)))
		require.NoError(t, err)
	}

	names, err := s.List(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)
}

func TestList_EmptyRoot(t *testing.T) {
	s, _ := newFiles(t)

	names, err := s.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, names)
	require.Empty(t, names)
}

func TestList_MissingRoot(t *testing.T) {
	s := New(Deps{Root: filepath.Join(t.TempDir(), "missing")})

	_, err := s.List(context.Background())
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestList_RootIsAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	s := New(Deps{Root: path})

	_, err := s.List(context.Background())
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestList_NestedDirectoriesUpToMaxDepth(t *testing.T) {
	s, root := newFiles(t)

	// Файл на глубине d лежит в d-1 вложенных каталогах.
	dir := root
	for d := 1; d <= MaxDepth+2; d++ {
		if d > 1 {
			dir = filepath.Join(dir, "d")
			require.NoError(t, os.Mkdir(dir, 0o755))
		}
		name := "depth" + strings.Repeat("x", d) + ".txt"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	names, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, names, MaxDepth)
	require.Contains(t, names, "depth"+strings.Repeat("x", MaxDepth)+".txt")
	require.NotContains(t, names, "depth"+strings.Repeat("x", MaxDepth+1)+".txt")
}

func TestList_SkipsSymlinks(t *testing.T) {
	s, root := newFiles(t)
	target := filepath.Join(root, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	if err := os.Symlink(target, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	names, err := s.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"real.txt"}, names)
}

func TestList_CanceledContext(t *testing.T) {
	s, root := newFiles(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUsage(t *testing.T) {
	s, _ := newFiles(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, "one", bytes.NewReader(make([]byte, 100)))
	require.NoError(t, err)
	_, err = s.Ingest(ctx, "two", bytes.NewReader(make([]byte, 23)))
	require.NoError(t, err)

	u, err := s.Usage(ctx)
	require.NoError(t, err)
	require.Equal(t, Usage{Files: 2, TotalBytes: 123}, u)
}
