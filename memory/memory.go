/*
 * rv64sim - Paged virtual memory with per-page permissions.
 *
 * Copyright (c) 2024
 *
 * Permission is hereby granted, free of charge, to any person obtaining a
 * copy of this software and associated documentation files (the "Software"),
 * to deal in the Software without restriction, including without limitation
 * the rights to use, copy, modify, merge, publish, distribute, sublicense,
 * and/or sell copies of the Software, and to permit persons to whom the
 * Software is furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the paged address space the core executes
// against: 4 KiB pages, per-page {R,W,X} permission bits, and a
// configurable per-access latency that the multi-cycle engine charges for
// loads and stores. The pipeline engine does not consult it: its Fetch and
// Memory stages take one cycle whatever the latency. A page is either owned (its backing buffer was allocated by
// NewPage and is freed by DeletePage) or externally mapped (MapPage, freed
// only by the caller).
package memory

import (
	"fmt"

	"rv64sim/fault"
)

const (
	PageSize  = 1 << 12
	PageShift = 12

	PermRead    = 1
	PermWrite   = 2
	PermExecute = 4
)

type pageEntry struct {
	buf  []byte
	perm int
}

// LatencyFunc computes the access latency, in cycles, of one memory
// operation. The default model is a flat one-cycle access for every width
// and direction; engines that want a slower/variable model (e.g. to make
// the multi-cycle engine's "READ costs one more cycle than WRITE" rule
// observable) install one with WithLatency.
type LatencyFunc func(addr uint64, width uint8, dir fault.Direction) int

func flatLatency(uint64, uint8, fault.Direction) int { return 1 }

// Memory is the paged address space. It is non-copyable: copying a Memory by
// value would duplicate the page table but alias the backing buffers, and
// double-free them on teardown. Always pass *Memory.
type Memory struct {
	pages   map[uint64]*pageEntry
	owned   map[*pageEntry]bool
	latency LatencyFunc
}

type Option func(*Memory)

// WithLatency installs a custom per-access latency model.
func WithLatency(fn LatencyFunc) Option {
	return func(m *Memory) { m.latency = fn }
}

func New(opts ...Option) *Memory {
	m := &Memory{
		pages:   make(map[uint64]*pageEntry),
		owned:   make(map[*pageEntry]bool),
		latency: flatLatency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close releases every owned buffer. Externally-mapped pages are left
// untouched: Memory never frees a buffer it does not own.
func (m *Memory) Close() {
	m.pages = nil
	m.owned = nil
}

func pageNumber(addr uint64) uint64 { return addr >> PageShift }
func pageOffset(addr uint64) uint64 { return addr & (PageSize - 1) }

func (m *Memory) entry(addr uint64) (*pageEntry, bool) {
	e, ok := m.pages[pageNumber(addr)]
	return e, ok
}

// NewPage allocates a zeroed 4 KiB buffer owned by Memory and installs the
// mapping. Fails if the page is already mapped.
func (m *Memory) NewPage(pageBase uint64, perm int) bool {
	if _, ok := m.pages[pageNumber(pageBase)]; ok {
		return false
	}
	e := &pageEntry{buf: make([]byte, PageSize), perm: perm}
	m.owned[e] = true
	m.pages[pageNumber(pageBase)] = e
	return true
}

// MapPage installs a mapping to an externally-owned buffer. Memory never
// frees it. buf must be at least PageSize bytes. Fails if already mapped.
func (m *Memory) MapPage(pageBase uint64, perm int, buf []byte) bool {
	if _, ok := m.pages[pageNumber(pageBase)]; ok {
		return false
	}
	if len(buf) < PageSize {
		return false
	}
	m.pages[pageNumber(pageBase)] = &pageEntry{buf: buf[:PageSize], perm: perm}
	return true
}

// DeletePage unmaps addr's page and frees its buffer, but only if Memory
// owns it (i.e. it was allocated by NewPage). Returns false for unmapped or
// externally-owned pages.
func (m *Memory) DeletePage(addr uint64) bool {
	pn := pageNumber(addr)
	e, ok := m.pages[pn]
	if !ok {
		return false
	}
	if !m.owned[e] {
		return false
	}
	delete(m.owned, e)
	delete(m.pages, pn)
	return true
}

// UnmapPage unmaps addr's page without freeing it, regardless of ownership.
func (m *Memory) UnmapPage(addr uint64) bool {
	pn := pageNumber(addr)
	if _, ok := m.pages[pn]; !ok {
		return false
	}
	delete(m.pages, pn)
	return true
}

// Fetch reads the 32-bit instruction word at addr. addr must be 4-byte
// aligned, matching the RV64I (non-compressed) instruction stream this core
// decodes.
func (m *Memory) Fetch(addr uint64) (uint32, *fault.Fault) {
	if err := checkAlign(addr, 4); err != nil {
		return 0, err
	}
	e, ok := m.entry(addr)
	if !ok || e.perm&PermExecute == 0 {
		return 0, fault.AccessVio(addr, addr, "page not mapped executable")
	}
	off := pageOffset(addr)
	return le32(e.buf[off : off+4]), nil
}

// Load reads a width-byte value at addr (width in {1,2,4,8}), optionally
// sign-extending to 64 bits.
func (m *Memory) Load(addr uint64, width uint8, signExtend bool) (uint64, *fault.Fault) {
	if err := checkAlign(addr, width); err != nil {
		return 0, err
	}
	e, ok := m.entry(addr)
	if !ok || e.perm&PermRead == 0 {
		return 0, fault.AccessVio(addr, addr, "page not mapped readable")
	}
	off := pageOffset(addr)
	var raw uint64
	switch width {
	case 1:
		raw = uint64(e.buf[off])
	case 2:
		raw = uint64(le16(e.buf[off : off+2]))
	case 4:
		raw = uint64(le32(e.buf[off : off+4]))
	case 8:
		raw = le64(e.buf[off : off+8])
	default:
		return 0, fault.Illegal(addr, fmt.Sprintf("invalid load width %d", width))
	}
	if signExtend && width < 8 {
		shift := 64 - width*8
		raw = uint64(int64(raw<<shift) >> shift)
	}
	return raw, nil
}

// Store writes the low width bytes of value at addr.
func (m *Memory) Store(addr uint64, width uint8, value uint64) *fault.Fault {
	if err := checkAlign(addr, width); err != nil {
		return err
	}
	e, ok := m.entry(addr)
	if !ok || e.perm&PermWrite == 0 {
		return fault.AccessVio(addr, addr, "page not mapped writable")
	}
	off := pageOffset(addr)
	switch width {
	case 1:
		e.buf[off] = byte(value)
	case 2:
		putLE16(e.buf[off:off+2], uint16(value))
	case 4:
		putLE32(e.buf[off:off+4], uint32(value))
	case 8:
		putLE64(e.buf[off:off+8], value)
	default:
		return fault.Illegal(addr, fmt.Sprintf("invalid store width %d", width))
	}
	return nil
}

// Peek reads a single raw byte bypassing width/alignment checks, for
// debugger/disassembler use (memory examination, stack walks). Still
// enforces the read permission bit.
func (m *Memory) Peek(addr uint64) (byte, *fault.Fault) {
	e, ok := m.entry(addr)
	if !ok || e.perm&PermRead == 0 {
		return 0, fault.AccessVio(addr, addr, "page not mapped readable")
	}
	return e.buf[pageOffset(addr)], nil
}

// Poke writes a single raw byte bypassing width/alignment checks.
func (m *Memory) Poke(addr uint64, value byte) *fault.Fault {
	e, ok := m.entry(addr)
	if !ok || e.perm&PermWrite == 0 {
		return fault.AccessVio(addr, addr, "page not mapped writable")
	}
	e.buf[pageOffset(addr)] = value
	return nil
}

// Latency returns the access latency of one memory operation, per the
// installed LatencyFunc.
func (m *Memory) Latency(addr uint64, width uint8, dir fault.Direction) int {
	return m.latency(addr, width, dir)
}

func checkAlign(addr uint64, width uint8) *fault.Fault {
	var mask uint64
	switch width {
	case 1:
		mask = 0
	case 2:
		mask = 1
	case 4:
		mask = 3
	case 8:
		mask = 7
	default:
		return fault.Illegal(addr, fmt.Sprintf("invalid access width %d", width))
	}
	if addr&mask != 0 {
		return fault.MisalignedAccess(addr, addr, fmt.Sprintf("address not aligned to %d bytes", width))
	}
	return nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	return uint64(le32(b[0:4])) | uint64(le32(b[4:8]))<<32
}
func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
func putLE64(b []byte, v uint64) {
	putLE32(b[0:4], uint32(v))
	putLE32(b[4:8], uint32(v>>32))
}
