package filesvc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sir_venger/flatstore/internal/models"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "a.txt"},
		{name: "..hidden"},
		{name: "x..y"},
		{name: ".profile"},
		{name: "имя файла.bin"},
		{name: strings.Repeat("n", maxNameLen)},
		{name: "", wantErr: true},
		{name: ".", wantErr: true},
		{name: "..", wantErr: true},
		{name: "../a.txt", wantErr: true},
		{name: "../../etc/passwd", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
		{name: "a/../b", wantErr: true},
		{name: `a\b`, wantErr: true},
		{name: "line\nbreak", wantErr: true},
		{name: strings.Repeat("n", maxNameLen+1), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ResolvePath(root, tc.name)
			if tc.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidName)
				return
			}
			require.NoError(t, err)
			require.Equal(t, filepath.Join(root, tc.name), p)
			require.Equal(t, filepath.Clean(root), filepath.Dir(p))
		})
	}
}
