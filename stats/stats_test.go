package stats

import "testing"

func TestCPIZeroBeforeAnyRetirement(t *testing.T) {
	c := New()
	if cpi := c.CPI(); cpi != 0 {
		t.Errorf("CPI before any retirement = %v, want 0", cpi)
	}
}

func TestCPIComputation(t *testing.T) {
	c := New()
	c.Cycles = 30
	c.Retire("add")
	c.Retire("add")
	c.Retire("lw")
	if cpi := c.CPI(); cpi != 10 {
		t.Errorf("CPI = %v, want 10", cpi)
	}
	if c.Frequency["add"] != 2 || c.Frequency["lw"] != 1 {
		t.Errorf("frequency table = %+v", c.Frequency)
	}
}

func TestMissRateComputation(t *testing.T) {
	c := New()
	c.Branch(true)
	c.Branch(false)
	c.Branch(false)
	c.Branch(false)
	if rate := c.MissRate(); rate != 0.25 {
		t.Errorf("MissRate = %v, want 0.25", rate)
	}
}

func TestSquashAndStallAccumulate(t *testing.T) {
	c := New()
	c.Squash(2)
	c.Squash(3)
	c.Stall(1)
	c.Stall(4)
	if c.SquashedInsts != 5 {
		t.Errorf("SquashedInsts = %d, want 5", c.SquashedInsts)
	}
	if c.RAWStallCycles != 5 {
		t.Errorf("RAWStallCycles = %d, want 5", c.RAWStallCycles)
	}
}
