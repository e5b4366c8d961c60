//go:build unix

package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// unixPager maps anonymous, zero-filled pages directly from the
// kernel via mmap(2), the same primitive the original C implementation
// uses (mmap(..., PROT_READ|PROT_WRITE, MAP_PRIVATE|MAP_ANONYMOUS,
// ...)); munmap(2) returns pages on release.
type unixPager struct {
	pageSize int
}

// NewPager returns the production Pager for unix-like systems.
func NewPager() Pager {
	return &unixPager{pageSize: syscall.Getpagesize()}
}

func (p *unixPager) PageSize() int {
	return p.pageSize
}

func (p *unixPager) Acquire(units int) []byte {
	length := units * p.pageSize
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic(&PagerError{Op: "mmap", Err: err})
	}
	// unix.MAP_ANON pages are already zero-filled by the kernel; no
	// explicit clear needed.
	return data
}

func (p *unixPager) Release(region []byte, units int) {
	if len(region) != units*p.pageSize {
		panic(&PagerError{Op: "munmap", Err: syscall.EINVAL})
	}
	if err := unix.Munmap(region); err != nil {
		panic(&PagerError{Op: "munmap", Err: err})
	}
}
