package heapmgr

import (
	"unsafe"

	"github.com/Alexandre316/linux-heap-memory-manager/internal/glist"
)

// blockMetaSize is the notional cost, in bytes, of one block's
// metadata header. No header is actually stored inline in the page's
// backing bytes — blockMeta lives on the Go heap — but every byte
// accounting rule in the split/coalesce state machine (hard vs. soft
// internal fragmentation, the page-size vs. usable-payload relationship)
// is defined in terms of this constant exactly as the original engine
// defines it in terms of sizeof(block_meta_data). Keeping the constant
// honors those rules without requiring an actual unsafe struct overlay.
const blockMetaSize = 32

// pageHeaderOffset is the notional offset of a page's sentinel meta
// block from the page base, mirroring offsetof(PageForApplication,
// block_meta_data) in the original: the space reserved for the page's
// next/prev/family links.
const pageHeaderOffset = 24

// applicationPageHeaderSize is the full reserved prefix of an
// application page: the link fields plus the sentinel's own meta
// header, mirroring offsetof(PageForApplication, page_memory).
const applicationPageHeaderSize = pageHeaderOffset + blockMetaSize

// maxPayloadPerPage returns the number of payload bytes a page built
// from units pages can host once the header is subtracted.
func maxPayloadPerPage(pageSize, units int) int {
	return units*pageSize - applicationPageHeaderSize
}

// blockMeta describes one block of a family's application page: either
// live user payload or a free block threaded onto the family's
// worst-fit priority list. offset is the block's virtual byte position
// from the page base (as if its header were physically stored there);
// it drives the byte accounting that must match the original's and
// locates the block's payload within the page's backing slice (see
// payload), never a raw pointer computation.
type blockMeta struct {
	isFree bool
	size   uint32
	offset uint32

	freeNode glist.Node // linked into page.family.freeHead when isFree
	prev     *blockMeta // previous block within the page, by offset
	next     *blockMeta // next block within the page, by offset

	page *appPage
}

// payload returns the byte slice of the page's backing buffer that
// this block currently owns.
func (b *blockMeta) payload() []byte {
	start := int(b.offset) + blockMetaSize
	return b.page.raw[start : start+int(b.size)]
}

// isSentinel reports whether b is the first block of its page.
func (b *blockMeta) isSentinel() bool {
	return b.offset == pageHeaderOffset
}

// appPage is one kernel-mapped page carved into blocks for a single
// family. Pages are chained per family, most-recently-created first.
type appPage struct {
	family   *Family
	raw      []byte
	sentinel *blockMeta

	prev, next *appPage
}

// freeBlockLess is the worst-fit comparator: a sorts before b (i.e.
// ranks higher in the priority list) when a is strictly larger. Equal
// sizes compare as ties, which PriorityInsert appends after existing
// equal nodes, preserving FIFO order among same-size free blocks. The
// original's comparator read the same operand twice, a memcmp-shaped
// bug that made every comparison report equality; this one reads both.
func freeBlockLess(a, b *glist.Node) int {
	ba := blockOfFreeNode(a)
	bb := blockOfFreeNode(b)
	if ba.size > bb.size {
		return -1
	}
	if ba.size < bb.size {
		return 1
	}
	return 0
}

// blockOfFreeNode recovers the blockMeta that embeds node as its
// freeNode field, the Go equivalent of the original's
// glthread_to_struct offsetof-based container_of macro.
func blockOfFreeNode(node *glist.Node) *blockMeta {
	addr := uintptr(unsafe.Pointer(node)) - unsafe.Offsetof(blockMeta{}.freeNode)
	return (*blockMeta)(unsafe.Pointer(addr))
}

// insertFree threads b onto its family's worst-fit priority list.
func insertFree(b *blockMeta) {
	glist.PriorityInsert(&b.page.family.freeHead, &b.freeNode, freeBlockLess)
}

// removeFree detaches b from its family's free list, a no-op if b is
// not currently linked.
func removeFree(b *blockMeta) {
	glist.Remove(&b.freeNode)
}

// biggestFree returns the largest free block registered for f, or nil
// if f has none. The free list is kept in non-increasing size order,
// so the biggest candidate is always the head's successor.
func biggestFree(f *Family) *blockMeta {
	if glist.IsEmpty(&f.freeHead) {
		return nil
	}
	return blockOfFreeNode(f.freeHead.Right)
}

// newAppPage acquires one fresh page from pager and lays out a single
// free sentinel block spanning its entire usable payload.
func newAppPage(pager pagerLike, family *Family) *appPage {
	raw := pager.Acquire(1)
	page := &appPage{family: family, raw: raw}

	sentinel := &blockMeta{
		isFree: true,
		size:   uint32(maxPayloadPerPage(len(raw), 1)),
		offset: pageHeaderOffset,
		page:   page,
	}
	page.sentinel = sentinel
	insertFree(sentinel)

	page.next = family.firstPage
	if family.firstPage != nil {
		family.firstPage.prev = page
	}
	family.firstPage = page

	return page
}

// pagerLike is the subset of platform.Pager the block engine depends
// on; kept as its own interface so tests can swap in a fake without
// importing the platform package's build-tagged files.
type pagerLike interface {
	Acquire(units int) []byte
	Release(region []byte, units int)
	PageSize() int
}

// unlinkPage removes page from its family's page list.
func unlinkPage(page *appPage) {
	if page.prev != nil {
		page.prev.next = page.next
	} else {
		page.family.firstPage = page.next
	}
	if page.next != nil {
		page.next.prev = page.prev
	}
	page.prev = nil
	page.next = nil
}

// splitKind classifies the remainder left over after carving size
// bytes out of a candidate block, per the split state machine.
type splitKind int

const (
	splitNone splitKind = iota
	splitHardFragment
	splitSoft
	splitFull
)

func classifySplit(remainder uint32, elementSize uint32) splitKind {
	switch {
	case remainder == 0:
		return splitNone
	case remainder < blockMetaSize:
		return splitHardFragment
	case remainder < blockMetaSize+elementSize:
		return splitSoft
	default:
		return splitFull
	}
}

// allocateFrom carves size bytes out of candidate, which must
// currently be free and a member of its family's free list. It
// returns the (now allocated) candidate block, shrunk to exactly size
// bytes, having already spliced off and re-freed any remainder per the
// split state machine.
func allocateFrom(candidate *blockMeta, size uint32, elementSize uint32) *blockMeta {
	removeFree(candidate)

	original := candidate.size
	candidate.isFree = false
	candidate.size = size

	remainder := original - size
	switch classifySplit(remainder, elementSize) {
	case splitNone:
		// Entire block consumed; nothing to splice.
	case splitHardFragment:
		// Remainder is too small to host even a header; the bytes are
		// silently absorbed into candidate's own footprint. candidate.size
		// stays at size; the slack is recovered automatically the next
		// time this block is freed (see freeBlock's tail-slack step).
	case splitSoft, splitFull:
		remBlock := &blockMeta{
			isFree: true,
			size:   remainder - blockMetaSize,
			offset: candidate.offset + blockMetaSize + size,
			page:   candidate.page,
			prev:   candidate,
			next:   candidate.next,
		}
		if candidate.next != nil {
			candidate.next.prev = remBlock
		}
		candidate.next = remBlock
		insertFree(remBlock)
	}

	zero(candidate.payload())
	return candidate
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// freeBlock marks b free, recovers any tail slack absorbed by a past
// hard-fragmentation split, coalesces with free neighbors, and either
// reclaims the page (if it is now structurally empty) or re-threads
// the surviving block onto the free list.
func freeBlock(b *blockMeta, pager pagerLike) {
	b.isFree = true

	// Tail-slack recovery: b's recorded size may be smaller than the
	// gap to the next block (or to the page end), left over from a
	// hard-fragmentation split at allocation time.
	if b.next != nil {
		b.size = b.next.offset - (b.offset + blockMetaSize)
	} else {
		b.size = uint32(len(b.page.raw)) - (b.offset + blockMetaSize)
	}

	survivor := b

	if survivor.next != nil && survivor.next.isFree {
		victim := survivor.next
		removeFree(victim)
		survivor.size += blockMetaSize + victim.size
		survivor.next = victim.next
		if victim.next != nil {
			victim.next.prev = survivor
		}
	}

	if survivor.prev != nil && survivor.prev.isFree {
		host := survivor.prev
		removeFree(host)
		host.size += blockMetaSize + survivor.size
		host.next = survivor.next
		if survivor.next != nil {
			survivor.next.prev = host
		}
		survivor = host
	}

	if survivor.isSentinel() && survivor.prev == nil && survivor.next == nil {
		page := survivor.page
		unlinkPage(page)
		pager.Release(page.raw, 1)
		return
	}

	insertFree(survivor)
}
