package picker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/antani/internal/volume"
)

func TestListingOrderFileMode(t *testing.T) {
	t.Parallel()

	l := BuildListing([]volume.DirEntry{
		{Name: "b.txt", Kind: volume.KindFile},
		{Name: "sys", Kind: volume.KindDir},
		{Name: ".", Kind: volume.KindDir},
		{Name: "..", Kind: volume.KindDir},
		{Name: "a.txt", Kind: volume.KindFile},
	}, false, DefaultLimits())

	require.Equal(t, 4, l.Len())
	require.Equal(t, Entry{Name: "..", Type: ParentRef}, l.At(0))
	require.Equal(t, Entry{Name: "sys", Type: Directory}, l.At(1))
	require.Equal(t, Entry{Name: "b.txt", Type: File}, l.At(2))
	require.Equal(t, Entry{Name: "a.txt", Type: File}, l.At(3))
	require.Equal(t, 2, l.DirCount())
	require.Equal(t, 2, l.FileCount())
	require.Zero(t, l.Dropped())
}

func TestListingDirsOnlyAddsSelfRefAndSkipsFiles(t *testing.T) {
	t.Parallel()

	l := BuildListing([]volume.DirEntry{
		{Name: "x.bin", Kind: volume.KindFile},
		{Name: "title", Kind: volume.KindDir},
	}, true, DefaultLimits())

	require.Equal(t, 3, l.Len())
	require.Equal(t, ParentRef, l.At(0).Type)
	require.Equal(t, SelfRef, l.At(1).Type)
	require.Equal(t, Entry{Name: "title", Type: Directory}, l.At(2))
	require.Zero(t, l.FileCount())
	require.True(t, l.DirsOnly())
}

func TestListingCapsFilesAt255(t *testing.T) {
	t.Parallel()

	entries := make([]volume.DirEntry, 256)
	for i := range entries {
		entries[i] = volume.DirEntry{Name: fmt.Sprintf("f%03d", i), Kind: volume.KindFile}
	}
	l := BuildListing(entries, false, DefaultLimits())

	require.Equal(t, 255, l.FileCount())
	require.Equal(t, 1, l.Dropped())
	require.Equal(t, "f254", l.At(l.Len()-1).Name)
}

func TestListingCapsDirectoryBucketAt255(t *testing.T) {
	t.Parallel()

	entries := make([]volume.DirEntry, 256)
	for i := range entries {
		entries[i] = volume.DirEntry{Name: fmt.Sprintf("d%03d", i), Kind: volume.KindDir}
	}
	l := BuildListing(entries, false, DefaultLimits())

	require.Equal(t, 255, l.DirCount(), "bucket includes the parent reference")
	require.Equal(t, 255, l.Len())
	require.Equal(t, 2, l.Dropped())
}

func TestListingDropsOverlongNames(t *testing.T) {
	t.Parallel()

	l := NewListing(false, Limits{MaxNameLen: 8})
	require.False(t, l.Add(strings.Repeat("n", 9), volume.KindFile))
	require.True(t, l.Add("short", volume.KindFile))
	require.Equal(t, 1, l.Dropped())
	require.Equal(t, 2, l.Len())
}
