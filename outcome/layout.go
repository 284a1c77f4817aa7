// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package outcome

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// ByteOrder names the order in which the bytes of a machine word are laid out
// in memory.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Layout describes the word a compact outcome is stored in: the byte order of
// the platform and the size of a pointer. The tag bit of a compact outcome is
// the least significant bit of the word. Payload bytes are placed such that
// they never share a byte with the tag bit.
type Layout struct {
	Order    ByteOrder
	WordSize uintptr
}

// Native is the layout of the platform the program is running on.
var Native = Layout{
	Order:    nativeOrder(),
	WordSize: unsafe.Sizeof(uintptr(0)),
}

func nativeOrder() ByteOrder {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

func (l Layout) String() string {
	return fmt.Sprintf("%v/%d-bit", l.Order, l.WordSize*8)
}

// Check verifies that the layout describes a supported word.
func (l Layout) Check() error {
	if l.Order != LittleEndian && l.Order != BigEndian {
		return fmt.Errorf("unsupported byte order %v", l.Order)
	}
	if l.WordSize != 4 && l.WordSize != 8 {
		return fmt.Errorf("unsupported word size %d", l.WordSize)
	}
	return nil
}

// Fits reports whether a payload of the given size can share a word with the
// tag bit.
func (l Layout) Fits(size uintptr) bool {
	return size < l.WordSize
}

// TagByte returns the index of the byte holding the tag bit.
func (l Layout) TagByte() uintptr {
	if l.Order == BigEndian {
		return l.WordSize - 1
	}
	return 0
}

// PayloadOffset returns the offset of the first payload byte within the word
// for a payload of the given size, which has to fit the layout.
//
// On big-endian platforms the least significant byte is the last one, so
// payloads start at the beginning of the word. On little-endian platforms the
// first byte carries the tag bit; payloads are placed at the largest power of
// two offset, starting at half a word, that still fits the payload. Since the
// size of any type is a multiple of its alignment, the resulting offset is
// always suitably aligned for the payload type.
func (l Layout) PayloadOffset(size uintptr) uintptr {
	if l.Order == BigEndian || !l.Fits(size) {
		return 0
	}
	offset := l.WordSize / 2
	for offset+size > l.WordSize {
		offset /= 2
	}
	return offset
}

// Encode returns the image of the word of a successful compact outcome
// carrying the given payload bytes.
func (l Layout) Encode(payload []byte) ([]byte, error) {
	if err := l.Check(); err != nil {
		return nil, err
	}
	size := uintptr(len(payload))
	if !l.Fits(size) {
		return nil, fmt.Errorf("%w: %d-byte payload in %d-byte word", ErrLayoutPrecondition, size, l.WordSize)
	}
	word := make([]byte, l.WordSize)
	copy(word[l.PayloadOffset(size):], payload)
	l.store(word, l.load(word)|uint64(tagBit))
	return word, nil
}

// Decode extracts a payload of the given size from the image of a compact
// outcome word. It reports false if the word is not tagged as a success.
func (l Layout) Decode(word []byte, size uintptr) ([]byte, bool) {
	if l.Check() != nil || uintptr(len(word)) != l.WordSize || !l.Fits(size) {
		return nil, false
	}
	if l.load(word)&uint64(tagBit) == 0 {
		return nil, false
	}
	offset := l.PayloadOffset(size)
	return word[offset : offset+size], true
}

func (l Layout) load(word []byte) uint64 {
	if l.WordSize == 4 {
		return uint64(l.Order.binary().Uint32(word))
	}
	return l.Order.binary().Uint64(word)
}

func (l Layout) store(word []byte, value uint64) {
	if l.WordSize == 4 {
		l.Order.binary().PutUint32(word, uint32(value))
		return
	}
	l.Order.binary().PutUint64(word, value)
}

// LayoutKind identifies the physical representation of an outcome.
type LayoutKind uint8

const (
	// LayoutGeneral stores the value next to the error box. It supports any
	// value type.
	LayoutGeneral LayoutKind = iota
	// LayoutCompact overlays the value and the error pointer in a single
	// word. It requires values strictly smaller than a pointer.
	LayoutCompact
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutGeneral:
		return "general"
	case LayoutCompact:
		return "compact"
	}
	return fmt.Sprintf("LayoutKind(%d)", uint8(k))
}

// SelectLayout returns the layout used for outcomes with values of type T:
// the compact layout if T is strictly smaller than a pointer, the general
// layout otherwise.
func SelectLayout[T any]() LayoutKind {
	var zero T
	if Native.Fits(unsafe.Sizeof(zero)) {
		return LayoutCompact
	}
	return LayoutGeneral
}
