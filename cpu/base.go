/*
 * rv64sim - Shared engine scaffolding: breakpoints, options, syscall handling.
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

// Package cpu implements the three RV64IM execution engines: single-cycle,
// multi-cycle, and a 5-stage pipeline with branch prediction and hazard
// detection. All three share a decoded-instruction stream from package
// decode and a paged address space from package memory.
package cpu

import (
	"log/slog"

	"rv64sim/register"
	"rv64sim/rvlog"
)

// sysExit is the RISC-V Linux a7 syscall number for process exit. An ecall
// with this number in a7 halts the engine instead of merely being logged.
const sysExit = 93

// breakpoints is a set of PCs an engine stops execution at, embedded by
// value into each engine (mirroring RvBaseCpu's breakpoint set).
type breakpoints struct {
	set map[uint64]struct{}
}

func newBreakpoints() breakpoints {
	return breakpoints{set: make(map[uint64]struct{})}
}

func (b *breakpoints) Add(pc uint64)    { b.set[pc] = struct{}{} }
func (b *breakpoints) Remove(pc uint64) { delete(b.set, pc) }
func (b *breakpoints) Has(pc uint64) bool {
	_, ok := b.set[pc]
	return ok
}

// List returns the current breakpoint addresses in no particular order.
func (b *breakpoints) List() []uint64 {
	out := make([]uint64, 0, len(b.set))
	for pc := range b.set {
		out = append(out, pc)
	}
	return out
}

// Option configures a shared engine concern (memory is always required and
// passed positionally by each engine's constructor instead).
type Option func(*engineConfig)

type engineConfig struct {
	log *slog.Logger
}

func newEngineConfig(opts []Option) engineConfig {
	cfg := engineConfig{log: rvlog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger installs a logger an engine uses for syscall and hazard
// diagnostics. Defaults to rvlog.Default() when omitted.
func WithLogger(log *slog.Logger) Option {
	return func(cfg *engineConfig) { cfg.log = log }
}

// handleSyscall logs a non-exit ecall and reports whether a7 requested
// process exit, in which case the caller should surface fault.NewHalt.
func handleSyscall(log *slog.Logger, reg *register.File) bool {
	a7 := reg.Get(17)
	if a7 == sysExit {
		return true
	}
	log.Info("ecall", "pc", reg.PC, "a7", a7, "a0", reg.Get(10))
	return false
}
