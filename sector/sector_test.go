package sector_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/WesLeeO/unixv6fs/sector"
)

func newDevice(totalSectors uint32) *sector.Device {
	backing := make([]byte, int(totalSectors)*sector.Size)
	stream := bytesextra.NewReadWriteSeeker(backing)
	return sector.New(stream, totalSectors)
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	d := newDevice(4)

	in := bytes.Repeat([]byte{0x42}, sector.Size)
	require.NoError(t, d.Write(2, in))

	out := make([]byte, sector.Size)
	require.NoError(t, d.Read(2, out))
	assert.Equal(t, in, out)
}

func TestRead_OutOfRangeIndex(t *testing.T) {
	d := newDevice(4)
	out := make([]byte, sector.Size)
	err := d.Read(4, out)
	assert.Error(t, err)
}

func TestWrite_OutOfRangeIndex(t *testing.T) {
	d := newDevice(4)
	in := make([]byte, sector.Size)
	err := d.Write(100, in)
	assert.Error(t, err)
}

func TestReadWrite_RejectWrongBufferSize(t *testing.T) {
	d := newDevice(4)

	assert.Error(t, d.Read(0, make([]byte, sector.Size-1)))
	assert.Error(t, d.Write(0, make([]byte, sector.Size+1)))
}

func TestWrite_DoesNotDisturbAdjacentSectors(t *testing.T) {
	d := newDevice(3)

	first := bytes.Repeat([]byte{0x11}, sector.Size)
	second := bytes.Repeat([]byte{0x22}, sector.Size)
	require.NoError(t, d.Write(0, first))
	require.NoError(t, d.Write(1, second))

	out := make([]byte, sector.Size)
	require.NoError(t, d.Read(0, out))
	assert.Equal(t, first, out)
	require.NoError(t, d.Read(1, out))
	assert.Equal(t, second, out)
}
