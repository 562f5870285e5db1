// Package bitmap implements a fixed-range bit vector used to track
// allocation state for inodes and data blocks during a mounted session.
package bitmap

import (
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"
)

// Bitmap tracks allocation over the closed index range [Min, Max]. Queries
// and mutations outside the range are no-ops: Get returns false, Set and
// Clear do nothing. This is relied on by scanning loops that walk one past
// the last valid index.
type Bitmap struct {
	Min, Max int
	bits     bitmap.Bitmap
}

// New allocates a zeroed bitmap covering [min, max].
func New(min, max int) *Bitmap {
	if max < min {
		max = min
	}
	return &Bitmap{
		Min:  min,
		Max:  max,
		bits: bitmap.New(max - min + 1),
	}
}

func (b *Bitmap) inRange(i int) bool {
	return i >= b.Min && i <= b.Max
}

// Get reports whether bit i is set. Out-of-range indices read as false.
func (b *Bitmap) Get(i int) bool {
	if !b.inRange(i) {
		return false
	}
	return b.bits.Get(i - b.Min)
}

// Set marks bit i as allocated. Out-of-range indices are a no-op.
func (b *Bitmap) Set(i int) {
	if !b.inRange(i) {
		return
	}
	b.bits.Set(i-b.Min, true)
}

// Clear marks bit i as free. Out-of-range indices are a no-op.
func (b *Bitmap) Clear(i int) {
	if !b.inRange(i) {
		return
	}
	b.bits.Set(i-b.Min, false)
}

// FirstClear returns the first unset index in [Min, Max], or (0, false) if
// every bit is set.
func (b *Bitmap) FirstClear() (int, bool) {
	for i := b.Min; i <= b.Max; i++ {
		if !b.Get(i) {
			return i, true
		}
	}
	return 0, false
}

// Print writes a labeled dump of the bitmap to w, one line per 64-bit word.
func (b *Bitmap) Print(w io.Writer, label string) {
	fmt.Fprintf(w, "%s: [%d, %d]\n", label, b.Min, b.Max)
	const wordBits = 64
	for base := b.Min; base <= b.Max; base += wordBits {
		fmt.Fprintf(w, "%#06x: ", (base-b.Min)/wordBits)
		for i := base; i < base+wordBits && i <= b.Max; i++ {
			if b.Get(i) {
				fmt.Fprint(w, "1")
			} else {
				fmt.Fprint(w, "0")
			}
		}
		fmt.Fprintln(w)
	}
}
