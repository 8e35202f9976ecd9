/*
 * rv64sim - Execution statistics shared by the multi-cycle and pipeline engines.
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

// Package stats accumulates the counters the multi-cycle and pipeline
// engines report through their exported Stats fields: cycle and instruction
// counts, branch outcomes, pipeline stalls/squashes, and a per-mnemonic
// retirement histogram.
package stats

// Counters is the mutable statistics block an engine updates as it runs.
// The zero value is ready to use.
type Counters struct {
	Cycles         uint64
	Instructions   uint64
	BranchInsts    uint64
	BranchMisses   uint64
	SquashedInsts  uint64
	RAWStallCycles uint64
	Frequency      map[string]uint64
}

// New returns a ready-to-use, zeroed Counters.
func New() *Counters {
	return &Counters{Frequency: make(map[string]uint64)}
}

// Retire records one committed instruction of the given mnemonic.
func (c *Counters) Retire(mnemonic string) {
	c.Instructions++
	c.Frequency[mnemonic]++
}

// Branch records a branch's resolved outcome and whether the predictor
// missed it.
func (c *Counters) Branch(mispredicted bool) {
	c.BranchInsts++
	if mispredicted {
		c.BranchMisses++
	}
}

// Squash records n instructions flushed out of the pipeline by a
// misprediction or other control hazard.
func (c *Counters) Squash(n uint64) {
	c.SquashedInsts += n
}

// Stall records n cycles lost to a RAW hazard stall.
func (c *Counters) Stall(n uint64) {
	c.RAWStallCycles += n
}

// CPI is the realized cycles-per-instruction, 0 if no instruction has
// retired yet.
func (c *Counters) CPI() float64 {
	if c.Instructions == 0 {
		return 0
	}
	return float64(c.Cycles) / float64(c.Instructions)
}

// MissRate is the branch misprediction rate, 0 if no branch has retired yet.
func (c *Counters) MissRate() float64 {
	if c.BranchInsts == 0 {
		return 0
	}
	return float64(c.BranchMisses) / float64(c.BranchInsts)
}
