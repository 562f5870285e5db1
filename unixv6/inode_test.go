package unixv6_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/testutil"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

func TestInodeRead_OutOfRange(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("hi"))
	m := mustMount(t, img)

	_, err := m.InodeRead(0)
	require.ErrorIs(t, err, errors.ErrInodeOutOfRange)

	_, err = m.InodeRead(unixv6.Inumber(m.Superblock.NumInodes()))
	require.ErrorIs(t, err, errors.ErrInodeOutOfRange)
}

func TestInodeRead_Unallocated(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("hi"))
	m := mustMount(t, img)

	_, err := m.InodeRead(10)
	require.ErrorIs(t, err, errors.ErrUnallocatedInode)
}

func TestInodeRead_Valid(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	in, err := m.InodeRead(img.FileInr)
	require.NoError(t, err)
	require.True(t, in.IsAllocated())
	require.False(t, in.IsDirectory())
	require.EqualValues(t, 18, in.Size())
}

func TestInodeFindSector_OutOfRange(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	in, err := m.InodeRead(img.FileInr)
	require.NoError(t, err)

	_, err = m.InodeFindSector(&in, 7)
	require.ErrorIs(t, err, errors.ErrOffsetOutOfRange)
}

func TestInodeFindSector_Unallocated(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	in, err := m.InodeRead(img.FileInr)
	require.NoError(t, err)
	in.Mode &^= unixv6.FlagIsAllocated

	_, err = m.InodeFindSector(&in, 0)
	require.ErrorIs(t, err, errors.ErrUnallocatedInode)
}

func TestInodeAlloc_AssignsFirstFree(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("hi"))
	m := mustMount(t, img)

	inr, err := m.InodeAlloc()
	require.NoError(t, err)
	require.EqualValues(t, 4, inr)
	require.True(t, m.InodeBitmap.Get(int(inr)))
}

func TestInodeScan_ListsAllocatedInodes(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	rows, err := m.InodeScan()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "DIR", rows[0].Kind)
	require.Equal(t, "FIL", rows[2].Kind)
}
