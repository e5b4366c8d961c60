//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsPager maps anonymous, zero-filled pages via VirtualAlloc,
// the Windows analogue of the unix backend's anonymous mmap.
// VirtualFree returns pages on release.
type windowsPager struct {
	pageSize int
}

// NewPager returns the production Pager for Windows.
func NewPager() Pager {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return &windowsPager{pageSize: int(info.PageSize)}
}

func (p *windowsPager) PageSize() int {
	return p.pageSize
}

func (p *windowsPager) Acquire(units int) []byte {
	length := uintptr(units * p.pageSize)
	addr, err := windows.VirtualAlloc(0, length, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		panic(&PagerError{Op: "VirtualAlloc", Err: err})
	}
	var data []byte
	sh := (*struct {
		Data uintptr
		Len  int
		Cap  int
	})(unsafe.Pointer(&data))
	sh.Data = addr
	sh.Len = int(length)
	sh.Cap = int(length)
	// VirtualAlloc with MEM_COMMIT returns zero-filled pages.
	return data
}

func (p *windowsPager) Release(region []byte, units int) {
	if len(region) != units*p.pageSize {
		panic(&PagerError{Op: "VirtualFree", Err: windows.ERROR_INVALID_PARAMETER})
	}
	addr := uintptr(unsafe.Pointer(&region[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		panic(&PagerError{Op: "VirtualFree", Err: err})
	}
}
