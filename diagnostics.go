package heapmgr

import (
	"fmt"
	"io"

	"github.com/dsnet/golib/memfile"
)

// BlockUsage summarizes a family's page-level memory accounting.
type BlockUsage struct {
	Allocated uint64 // bytes currently handed out to callers
	Free      uint64 // bytes sitting in the free list
	Pages     int    // number of application pages backing the family
}

// DumpBlockUsage walks every page of the named family and returns its
// current allocated/free/page-count accounting. It returns
// ErrFamilyNotFound if name was never registered.
func (m *Manager) DumpBlockUsage(name string) (BlockUsage, error) {
	family := m.registry.lookup(name)
	if family == nil {
		return BlockUsage{}, NewError(ErrFamilyNotFound)
	}

	var usage BlockUsage
	for page := family.firstPage; page != nil; page = page.next {
		usage.Pages++
		for b := page.sentinel; b != nil; b = b.next {
			if b.isFree {
				usage.Free += uint64(b.size)
			} else {
				usage.Allocated += uint64(b.size)
			}
		}
	}
	return usage, nil
}

// PrintRegisteredFamilies writes a one-line summary of every
// registered family to w: in registration order within each registry
// page, with the most recently created registry page first.
func (m *Manager) PrintRegisteredFamilies(w io.Writer) {
	m.registry.each(func(f *Family) {
		fmt.Fprintf(w, "family %-20s element_size=%d\n", f.Name, f.ElementSize)
	})
}

// DumpMemoryUsage renders a human-readable report of every registered
// family's block usage into an in-memory, seekable buffer (so callers
// can re-read the report, e.g. to attach it to a larger diagnostic
// bundle, without hitting a real file).
func (m *Manager) DumpMemoryUsage() (*memfile.File, error) {
	f := memfile.New(nil)

	var writeErr error
	m.registry.each(func(fam *Family) {
		if writeErr != nil {
			return
		}
		usage, err := m.DumpBlockUsage(fam.Name)
		if err != nil {
			writeErr = err
			return
		}
		_, writeErr = fmt.Fprintf(f, "%-20s pages=%-4d allocated=%-10d free=%-10d\n",
			fam.Name, usage.Pages, usage.Allocated, usage.Free)
	})
	if writeErr != nil {
		return nil, writeErr
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return f, nil
}
