package heapmgr

import "github.com/Alexandre316/linux-heap-memory-manager/internal/glist"

// approxFamilyDescriptorSize is the notional per-descriptor footprint
// used to size registry pages, mirroring sizeof(StructureFamily) in
// the C original. It does not need to be exact: it only has to yield
// a sane, stable capacity per registry page.
const approxFamilyDescriptorSize = 64

// approxPointerSize is the notional cost of the registry page's next
// pointer, mirroring sizeof(PageForStructFamilies*).
const approxPointerSize = 8

// Family is a registered object family: a fixed element size, the
// head of its application-page list, and its worst-fit free-block
// priority list.
type Family struct {
	Name        string
	ElementSize uint32

	firstPage *appPage  // head of this family's application-page list
	freeHead  glist.Node // sentinel head of the free-block priority list
}

// registryPage is an append-only bounded arena of Family descriptors.
// Capacity is fixed at creation so that descriptor addresses, once
// handed out, never move — application pages and block metadata hold
// a stable *Family back-reference for the process lifetime.
type registryPage struct {
	next     *registryPage
	families []Family
	capacity int
}

func newRegistryPage(pageSize int) *registryPage {
	capacity := (pageSize - approxPointerSize) / approxFamilyDescriptorSize
	if capacity < 1 {
		capacity = 1
	}
	return &registryPage{
		families: make([]Family, 0, capacity),
		capacity: capacity,
	}
}

func (p *registryPage) full() bool {
	return len(p.families) >= p.capacity
}

// registry is the process-wide family registry: a forward-linked list
// of bounded registry pages, most-recently-created first.
type registry struct {
	head *registryPage
}

// register appends a new Family descriptor, creating a fresh registry
// page if the current head is absent or full. It returns the stable
// *Family pointer callers must keep using; the returned Family's
// address never changes afterward.
func (r *registry) register(pageSize int, name string, elementSize uint32) *Family {
	if r.head == nil || r.head.full() {
		page := newRegistryPage(pageSize)
		page.next = r.head
		r.head = page
	}

	r.head.families = append(r.head.families, Family{Name: name, ElementSize: elementSize})
	f := &r.head.families[len(r.head.families)-1]
	glist.Init(&f.freeHead)
	return f
}

// lookup scans every registry page for a family named name.
func (r *registry) lookup(name string) *Family {
	for page := r.head; page != nil; page = page.next {
		for i := range page.families {
			if page.families[i].Name == name {
				return &page.families[i]
			}
		}
	}
	return nil
}

// each calls fn for every registered family, in registration order
// within a page but most-recent-page-first overall (registry pages
// are prepended, mirroring the original's linked-list order).
func (r *registry) each(fn func(*Family)) {
	for page := r.head; page != nil; page = page.next {
		for i := range page.families {
			fn(&page.families[i])
		}
	}
}
