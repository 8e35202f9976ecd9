/*
 * rv64sim - Branch predictors for the pipeline engine.
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

// Package branchpred implements the pipeline engine's branch predictors:
// static never/always-taken, backward-taken-forward-not-taken (BTFNT), and a
// table of saturating counters indexed by the low bits of the PC.
package branchpred

// Predictor decides, at fetch time, whether a branch at pc targeting target
// will be taken, and is later told the architectural outcome so it can
// adapt (a no-op for the static predictors).
type Predictor interface {
	Predict(pc, target uint64) bool
	Update(pc uint64, taken bool)
}

// StaticNeverTaken always predicts not-taken.
type StaticNeverTaken struct{}

func (StaticNeverTaken) Predict(uint64, uint64) bool { return false }
func (StaticNeverTaken) Update(uint64, bool)         {}

// StaticAlwaysTaken always predicts taken.
type StaticAlwaysTaken struct{}

func (StaticAlwaysTaken) Predict(uint64, uint64) bool { return true }
func (StaticAlwaysTaken) Update(uint64, bool)         {}

// BTFNT predicts taken for backward branches (loops) and not-taken for
// forward branches, without any learned state.
type BTFNT struct{}

func (BTFNT) Predict(pc, target uint64) bool { return target < pc }
func (BTFNT) Update(uint64, bool)            {}

// satCounter is a saturating up/down counter clamped to [0, max].
type satCounter struct {
	value uint8
	max   uint8
}

func (c *satCounter) increment() {
	if c.value < c.max {
		c.value++
	}
}

func (c *satCounter) decrement() {
	if c.value > 0 {
		c.value--
	}
}

func (c satCounter) aboveHalf() bool {
	return c.value > c.max/2
}

// SaturatingCounter is a table of W-bit saturating counters indexed by the
// N PC bits above bit 0, the classic gshare-less 2-bit (or wider) dynamic
// predictor. Counter width and index width are both configurable.
type SaturatingCounter struct {
	counters []satCounter
	indexN   uint
}

// NewSaturatingCounter builds a table of 2^indexBits counters, each counterBits
// wide, all initialized to max/2, the weakly-not-taken state (one taken
// update moves a counter above half and flips its prediction to taken).
func NewSaturatingCounter(counterBits, indexBits uint) *SaturatingCounter {
	if counterBits == 0 {
		counterBits = 2
	}
	if indexBits == 0 {
		indexBits = 4
	}
	size := uint64(1) << indexBits
	max := uint8((uint64(1) << counterBits) - 1)
	counters := make([]satCounter, size)
	for i := range counters {
		counters[i] = satCounter{value: max / 2, max: max}
	}
	return &SaturatingCounter{counters: counters, indexN: indexBits}
}

// index takes the low indexN bits of pc after discarding only bit 0 (PC is
// always 2-aligned; bit 1 still distinguishes counters), matching
// RvBranchPred.hpp's `(pc >> 1) & ((1 << pc_len) - 1)`.
func (s *SaturatingCounter) index(pc uint64) uint64 {
	mask := (uint64(1) << s.indexN) - 1
	return (pc >> 1) & mask
}

func (s *SaturatingCounter) Predict(pc, _ uint64) bool {
	return s.counters[s.index(pc)].aboveHalf()
}

func (s *SaturatingCounter) Update(pc uint64, taken bool) {
	c := &s.counters[s.index(pc)]
	if taken {
		c.increment()
	} else {
		c.decrement()
	}
}
