package heapmgr

import (
	"runtime"
	"unsafe"

	"github.com/Alexandre316/linux-heap-memory-manager/internal/fastmap"
	"github.com/Alexandre316/linux-heap-memory-manager/platform"
)

// Config configures a Manager. The zero value is valid and uses the
// platform's native page size and the default production Pager.
type Config struct {
	// Pager overrides the platform backend. Tests pass
	// platform.NewSimulatedPager here; production callers leave it nil
	// to get the native mmap/VirtualAlloc backend.
	Pager platform.Pager
}

// Manager is a family-aware heap-memory manager: callers register
// named families with a fixed element size, then allocate and free
// contiguous runs of elements by family name. It is not safe for
// concurrent use; callers needing concurrency must serialize access
// externally.
type Manager struct {
	pager    platform.Pager
	registry registry
	live     fastmap.AddrMap
}

// NewManager constructs a Manager. It never fails for the zero Config;
// a non-nil error is reserved for future platform-probing failure
// modes.
func NewManager(cfg Config) (*Manager, error) {
	pager := cfg.Pager
	if pager == nil {
		pager = platform.NewPager()
	}
	return &Manager{pager: pager}, nil
}

// RegisterFamily declares a new named object family with a fixed
// per-element size. A zero elementSize, or one larger than the page
// size, is fatal: RegisterFamily panics with an *Error whose Code is
// ErrElementTooLarge. Registering the same name twice returns
// ErrFamilyExists.
func (m *Manager) RegisterFamily(name string, elementSize uint32) error {
	if m.registry.lookup(name) != nil {
		return NewError(ErrFamilyExists)
	}
	if elementSize == 0 || elementSize > uint32(m.pager.PageSize()) {
		fatal(ErrElementTooLarge, nil)
	}
	m.registry.register(m.pager.PageSize(), name, elementSize)
	return nil
}

// Alloc returns a zeroed byte slice spanning units contiguous elements
// of the named family. It returns ErrFamilyNotFound if name was never
// registered, and ErrRequestTooLarge if units*elementSize exceeds what
// a single page can host.
func (m *Manager) Alloc(name string, units int) ([]byte, error) {
	family := m.registry.lookup(name)
	if family == nil {
		return nil, NewError(ErrFamilyNotFound)
	}
	if units <= 0 {
		return nil, NewError(ErrRequestTooLarge)
	}

	maxPayload := maxPayloadPerPage(m.pager.PageSize(), 1)
	if maxPayload <= 0 || uint64(units) > uint64(maxPayload)/uint64(family.ElementSize) {
		return nil, NewError(ErrRequestTooLarge)
	}
	size := uint32(units) * family.ElementSize

	candidate := biggestFree(family)
	if candidate == nil || candidate.size < size {
		page := newAppPage(m.pager, family)
		candidate = page.sentinel
		if candidate.size < size {
			// A single page cannot host this request even when empty;
			// this was already checked above via maxPayloadPerPage, so
			// reaching here indicates the page was undersized relative
			// to its own reported usable payload, which should not
			// happen under a correct Pager.
			fatal(ErrRequestTooLarge, nil)
		}
	}

	b := allocateFrom(candidate, size, family.ElementSize)

	payload := b.payload()
	m.live.Set(addrOf(payload), unsafe.Pointer(b))
	runtime.KeepAlive(b)
	return payload, nil
}

// Free returns data, previously returned by Alloc on this Manager,
// back to its family. Freeing a slice this Manager never handed out is
// fatal, and freeing a slice whose block is already free (a
// double-free) is fatal: both indicate a caller bug serious enough
// that continuing risks corrupting the free-list state of every other
// family.
//
// The address-to-block mapping is never removed on free: it is the
// sole way Free locates a block's metadata (the Go equivalent of the
// original's B = p - sizeof(meta) pointer arithmetic), and it must
// stay in place after the block is freed so a repeat Free call on the
// same slice still resolves to the same blockMeta and observes
// isFree == true, rather than failing as an unmanaged pointer.
func (m *Manager) Free(data []byte) error {
	if len(data) == 0 {
		fatal(ErrNotManaged, nil)
	}

	key := addrOf(data)
	ptr, ok := m.live.Get(key)
	if !ok {
		fatal(ErrNotManaged, nil)
	}

	b := (*blockMeta)(ptr)
	if b.isFree {
		fatal(ErrDoubleFree, nil)
	}

	freeBlock(b, m.pager)
	return nil
}

// addrOf returns the address of data's first byte as a uintptr key
// suitable for the live-allocation address map.
func addrOf(data []byte) uintptr {
	return uintptr(unsafe.Pointer(&data[0]))
}
