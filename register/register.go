/*
 * rv64sim - Register file: 32 integer registers plus the program counter.
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

// Package register implements the RV64I architectural register file: 32
// general-purpose 64-bit registers (x0 is hard-wired zero) and the 64-bit
// program counter.
package register

// ABINames are the RISC-V calling-convention register names, indexed by
// register number. Used by decode for disassembly.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0",
	"t1", "t2", "s0", "s1", "a0", "a1",
	"a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4",
	"t5", "t6",
}

// File is the architectural register state: 32 GPRs plus PC. The zero value
// is a valid, fully zeroed File.
type File struct {
	x  [32]uint64
	PC uint64
}

// Get returns the value of register id. Reads of x0 always yield 0.
func (f *File) Get(id uint8) uint64 {
	if id == 0 {
		return 0
	}
	return f.x[id]
}

// GetSigned returns the value of register id reinterpreted as signed.
func (f *File) GetSigned(id uint8) int64 {
	return int64(f.Get(id))
}

// Set writes value to register id. Writes to x0 are silently dropped.
func (f *File) Set(id uint8, value uint64) {
	if id == 0 {
		return
	}
	f.x[id] = value
}

// Copy returns a value copy of f, preserving all 33 words (32 GPRs + PC).
// Used by pipeline stages to latch a register snapshot at stage entry.
func (f *File) Copy() File {
	return *f
}
