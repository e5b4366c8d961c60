package heapmgr

import (
	"testing"

	"github.com/Alexandre316/linux-heap-memory-manager/platform"
)

func newTestFamily(pageSize int, elementSize uint32) *Family {
	var r registry
	return r.register(pageSize, "Test", elementSize)
}

func TestClassifySplit(t *testing.T) {
	const elementSize = 16
	cases := []struct {
		remainder uint32
		want      splitKind
	}{
		{0, splitNone},
		{blockMetaSize - 1, splitHardFragment},
		{blockMetaSize, splitSoft},
		{blockMetaSize + elementSize - 1, splitSoft},
		{blockMetaSize + elementSize, splitFull},
		{blockMetaSize + elementSize + 100, splitFull},
	}
	for _, c := range cases {
		got := classifySplit(c.remainder, elementSize)
		if got != c.want {
			t.Errorf("classifySplit(%d, %d) = %v, want %v", c.remainder, elementSize, got, c.want)
		}
	}
}

func TestNewAppPageSentinelSpansUsablePayload(t *testing.T) {
	pager := platform.NewSimulatedPager(4096)
	family := newTestFamily(4096, 16)

	page := newAppPage(pager, family)
	if page.sentinel.offset != pageHeaderOffset {
		t.Fatalf("sentinel.offset = %d, want %d", page.sentinel.offset, pageHeaderOffset)
	}
	want := uint32(maxPayloadPerPage(4096, 1))
	if page.sentinel.size != want {
		t.Fatalf("sentinel.size = %d, want %d", page.sentinel.size, want)
	}
	if biggestFree(family) != page.sentinel {
		t.Fatal("fresh sentinel should be the family's only free block")
	}
}

func TestAllocateFromFullSplit(t *testing.T) {
	pager := platform.NewSimulatedPager(4096)
	family := newTestFamily(4096, 16)
	page := newAppPage(pager, family)

	candidate := biggestFree(family)
	originalSize := candidate.size

	b := allocateFrom(candidate, 64, 16)
	if b.isFree {
		t.Fatal("allocated block should not be free")
	}
	if b.size != 64 {
		t.Fatalf("b.size = %d, want 64", b.size)
	}
	if b.next == nil {
		t.Fatal("expected a remainder block to be spliced in")
	}
	if !b.next.isFree {
		t.Fatal("remainder block should be free")
	}
	if b.next.size != originalSize-64-blockMetaSize {
		t.Fatalf("remainder size = %d, want %d", b.next.size, originalSize-64-blockMetaSize)
	}
	if biggestFree(family) != b.next {
		t.Fatal("remainder should now be the sole free block")
	}
	_ = page
}

func TestFreeBlockCoalescesAndReclaimsPage(t *testing.T) {
	pager := platform.NewSimulatedPager(4096)
	family := newTestFamily(4096, 16)
	page := newAppPage(pager, family)

	a := allocateFrom(biggestFree(family), 64, 16)
	b := allocateFrom(biggestFree(family), 64, 16)

	freeBlock(a, pager)
	if family.firstPage == nil {
		t.Fatal("page should still exist: b is still allocated")
	}

	freeBlock(b, pager)
	if family.firstPage != nil {
		t.Fatal("page should have been reclaimed once every block is free")
	}
	_ = page
}

func TestFreeOutOfOrderCoalescesAndReclaimsPage(t *testing.T) {
	pager := platform.NewSimulatedPager(4096)
	family := newTestFamily(4096, 16)
	newAppPage(pager, family)

	// Carve three blocks of distinct sizes, then free them out of
	// address order: the middle one first, then the first, then the
	// last.
	a := allocateFrom(biggestFree(family), 16, 16)
	b := allocateFrom(biggestFree(family), 32, 16)
	c := allocateFrom(biggestFree(family), 48, 16)

	freeBlock(b, pager)
	freeBlock(a, pager)
	freeBlock(c, pager)

	// Each free coalesces with its free neighbors, so once c is freed
	// the page is one sentinel-sized free run and is reclaimed.
	if family.firstPage != nil {
		t.Fatal("fully-freed single page should have been reclaimed")
	}
}
