package register

import "testing"

// Zero-register invariant: x0 always reads back as 0, regardless of what is
// written to it.
func TestZeroRegisterAlwaysZero(t *testing.T) {
	var f File
	f.Set(0, 0xdeadbeef)
	if v := f.Get(0); v != 0 {
		t.Errorf("x0 = 0x%x, want 0", v)
	}
	f.x[0] = 0x12345 // bypass Set to simulate a stray raw write
	if v := f.Get(0); v != 0 {
		t.Errorf("x0 = 0x%x after raw write, want 0 (Get must not trust storage)", v)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	var f File
	f.Set(5, 0xcafef00d)
	if v := f.Get(5); v != 0xcafef00d {
		t.Errorf("x5 = 0x%x, want 0xcafef00d", v)
	}
}

func TestGetSignedSignExtends(t *testing.T) {
	var f File
	f.Set(1, ^uint64(0)) // all ones == -1
	if v := f.GetSigned(1); v != -1 {
		t.Errorf("x1 signed = %d, want -1", v)
	}
}

func TestCopyPreservesAllWords(t *testing.T) {
	var f File
	for i := uint8(1); i < 32; i++ {
		f.Set(i, uint64(i)*0x1111)
	}
	f.PC = 0x8000

	g := f.Copy()
	g.Set(3, 0xffffffff)

	for i := uint8(1); i < 32; i++ {
		if i == 3 {
			continue
		}
		if f.Get(i) != uint64(i)*0x1111 {
			t.Errorf("original x%d mutated by copy write", i)
		}
	}
	if f.Get(3) == 0xffffffff {
		t.Errorf("Copy did not produce an independent register file")
	}
	if g.PC != 0x8000 {
		t.Errorf("Copy dropped PC: got 0x%x, want 0x8000", g.PC)
	}
}
