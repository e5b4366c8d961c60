package platform

import "testing"

func TestSimulatedPagerZeroedAndSized(t *testing.T) {
	p := NewSimulatedPager(4096)
	if p.PageSize() != 4096 {
		t.Fatalf("PageSize() = %d, want 4096", p.PageSize())
	}

	region := p.Acquire(2)
	if len(region) != 2*4096 {
		t.Fatalf("Acquire(2) returned %d bytes, want %d", len(region), 2*4096)
	}
	for i, b := range region {
		if b != 0 {
			t.Fatalf("byte %d is not zero: %d", i, b)
		}
	}

	region[0] = 0xFF
	p.Release(region, 2)
}

func TestSimulatedPagerReleaseSizeMismatchPanics(t *testing.T) {
	p := NewSimulatedPager(4096)
	region := p.Acquire(1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected Release to panic on size mismatch")
		}
	}()
	p.Release(region, 2)
}
