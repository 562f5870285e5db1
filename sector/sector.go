// Package sector provides unbuffered whole-sector I/O over a seekable
// stream. It never caches: every Read/Write call goes straight to the
// underlying stream so that a write is immediately visible to a later read
// through a different sector.Device wrapping the same stream.
package sector

import (
	"io"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

// Size is the fixed sector size of a v6 filesystem image, in bytes.
const Size = 512

// Device is a 512-byte-sector view over a stream. TotalSectors bounds valid
// indices to [0, TotalSectors).
type Device struct {
	TotalSectors uint32
	stream       io.ReadWriteSeeker
}

// New wraps stream as a sector device with totalSectors addressable sectors.
func New(stream io.ReadWriteSeeker, totalSectors uint32) *Device {
	return &Device{TotalSectors: totalSectors, stream: stream}
}

func (d *Device) checkBounds(index uint32) error {
	if index >= d.TotalSectors {
		return u6errors.ErrIO.WithMessage("sector index out of range")
	}
	return nil
}

func (d *Device) seekTo(index uint32) error {
	_, err := d.stream.Seek(int64(index)*Size, io.SeekStart)
	if err != nil {
		return u6errors.ErrIO.Wrap(err)
	}
	return nil
}

// Read reads exactly one sector into out, which must be Size bytes long.
func (d *Device) Read(index uint32, out []byte) error {
	if len(out) != Size {
		return u6errors.ErrBadParameter.WithMessage("buffer must be one sector long")
	}
	if err := d.checkBounds(index); err != nil {
		return err
	}
	if err := d.seekTo(index); err != nil {
		return err
	}
	n, err := io.ReadFull(d.stream, out)
	if err != nil || n != Size {
		return u6errors.ErrIO.WithMessage("short sector read")
	}
	return nil
}

// Write writes exactly one sector from in, which must be Size bytes long.
func (d *Device) Write(index uint32, in []byte) error {
	if len(in) != Size {
		return u6errors.ErrBadParameter.WithMessage("buffer must be one sector long")
	}
	if err := d.checkBounds(index); err != nil {
		return err
	}
	if err := d.seekTo(index); err != nil {
		return err
	}
	n, err := d.stream.Write(in)
	if err != nil || n != Size {
		return u6errors.ErrIO.WithMessage("short sector write")
	}
	return nil
}
