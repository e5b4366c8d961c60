package platform

import (
	"errors"

	"github.com/ncw/directio"
)

// simulatedPager is a Pager backed by directio.AlignedBlock instead of
// a real mmap/munmap round trip. It gives the same page-alignment
// guarantee the production backends provide (required by invariant
// I3, offset consistency) without a kernel call per page, which is
// all the engine's own test suite needs: alignment and zero-fill, not
// a genuine return of memory to the OS. It is not a supported
// production backend.
type simulatedPager struct {
	pageSize int
}

// NewSimulatedPager constructs a Pager for tests.
func NewSimulatedPager(pageSize int) Pager {
	return &simulatedPager{pageSize: pageSize}
}

func (p *simulatedPager) PageSize() int {
	return p.pageSize
}

func (p *simulatedPager) Acquire(units int) []byte {
	block := directio.AlignedBlock(units * p.pageSize)
	for i := range block {
		block[i] = 0
	}
	return block
}

func (p *simulatedPager) Release(region []byte, units int) {
	if len(region) != units*p.pageSize {
		panic(&PagerError{Op: "simulated-release", Err: errInvalidRegion})
	}
}

var errInvalidRegion = errors.New("region size does not match units*pageSize")
