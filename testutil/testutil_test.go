package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WesLeeO/unixv6fs/testutil"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

// BuildImage's seeded directories must report every entry they hold,
// including the real child past "." and "..", or every test built on top of
// it silently loses its only non-dot fixture.
func TestBuildImage_SeedsAllDirectoryEntries(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))

	m, err := unixv6.Mount(img.Stream())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Unmount() })

	tmpInr, err := m.DirLookup(img.RootInr, "tmp")
	require.NoError(t, err)
	require.Equal(t, img.TmpInr, tmpInr)

	fileInr, err := m.DirLookup(img.RootInr, "tmp/coucou.txt")
	require.NoError(t, err)
	require.Equal(t, img.FileInr, fileInr)
}
