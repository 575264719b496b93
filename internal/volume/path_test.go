package volume

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathJoinNeverDoublesSeparator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base Path
		name string
		want Path
	}{
		{"sdmc:/", "a", "sdmc:/a"},
		{"sdmc:/a", "b", "sdmc:/a/b"},
		{"sdmc:/a/", "b", "sdmc:/a/b"},
		{"sdmc:/a/", "/b/", "sdmc:/a/b"},
		{"slc:/sys/title", "x.bin", "slc:/sys/title/x.bin"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.base.Join(tc.name), "join %q + %q", tc.base, tc.name)
	}
}

func TestPathAccessors(t *testing.T) {
	t.Parallel()

	p := Path("sdmc:/games/save.dat")
	require.Equal(t, "sdmc", p.Volume())
	require.Equal(t, "games/save.dat", p.Rel())
	require.Equal(t, "save.dat", p.Base())
	require.Equal(t, Path("sdmc:/games"), p.Parent())
	require.False(t, p.IsRoot())
	require.False(t, p.IsDir())

	root := Root("slc")
	require.Equal(t, Path("slc:/"), root)
	require.True(t, root.IsRoot())
	require.Equal(t, root, root.Parent())
	require.Equal(t, "", root.Base())
	require.Equal(t, root, root.AsDir())
}

func TestPathDirForms(t *testing.T) {
	t.Parallel()

	require.Equal(t, Path("sdmc:/a/"), Path("sdmc:/a").AsDir())
	require.Equal(t, Path("sdmc:/a/"), Path("sdmc:/a/").AsDir())
	require.Equal(t, Path("sdmc:/a"), Path("sdmc:/a/").Clean())
	require.True(t, Path("sdmc:/a/").Equal("sdmc:/a"))
	require.False(t, Path("sdmc:/a").Equal("slc:/a"))
}

func TestParsePath(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("sdmc:/a/b")
	require.NoError(t, err)
	require.Equal(t, Path("sdmc:/a/b"), p)

	_, err = ParsePath("/a/b")
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = ParsePath(":/a")
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = ParsePath("sdmc:/a/../b")
	require.ErrorIs(t, err, ErrInvalidPath)
}
