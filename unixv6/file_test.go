package unixv6_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/testutil"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

func TestLseek_ValidPositions(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	f, err := m.Open(img.FileInr)
	require.NoError(t, err)

	require.NoError(t, f.Lseek(0))
	require.NoError(t, f.Lseek(f.Inode.Size()))
	require.ErrorIs(t, f.Lseek(f.Inode.Size()+1), errors.ErrOffsetOutOfRange)
}

func TestWriteBytes_GrowsWithinSector(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	f, err := m.Open(img.FileInr)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("0"), 32)
	require.NoError(t, f.WriteBytes(payload))
	require.EqualValues(t, 50, f.Inode.Size())

	reopened, err := m.Open(img.FileInr)
	require.NoError(t, err)
	var buf [unixv6.SectorSize]byte
	n, err := reopened.ReadBlock(buf[:])
	require.NoError(t, err)
	require.Equal(t, 50, n)
	require.Equal(t, "Coucou le monde !\n"+strings.Repeat("0", 32), string(buf[:n]))
}

func TestWriteBytes_CrossesSectorBoundary(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte("Coucou le monde !\n"))
	m := mustMount(t, img)

	f, err := m.Open(img.FileInr)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("0"), 512)
	require.NoError(t, f.WriteBytes(payload))
	require.EqualValues(t, 530, f.Inode.Size())

	reopened, err := m.Open(img.FileInr)
	require.NoError(t, err)

	var first [unixv6.SectorSize]byte
	n, err := reopened.ReadBlock(first[:])
	require.NoError(t, err)
	require.Equal(t, unixv6.SectorSize, n)
	require.Equal(t, "Coucou le monde !\n"+strings.Repeat("0", 494), string(first[:]))

	var second [unixv6.SectorSize]byte
	n, err = reopened.ReadBlock(second[:])
	require.NoError(t, err)
	require.Equal(t, 18, n)
	require.Equal(t, strings.Repeat("0", 18), string(second[:18]))
}

func TestWriteBytes_FileTooLarge(t *testing.T) {
	img := testutil.BuildImage(64, 2, []byte(""))
	m := mustMount(t, img)

	inr, err := m.AddFile("/tmp/big.txt", unixv6.DefaultFileMode, nil)
	require.NoError(t, err)
	f, err := m.Open(inr)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("x"), unixv6.MaxSmallFileSize+1)
	require.ErrorIs(t, f.WriteBytes(payload), errors.ErrFileTooLarge)
}
