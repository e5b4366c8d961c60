// Package heapmgr is a user-space heap-memory manager that carves
// kernel-supplied virtual memory pages into variably sized blocks for
// named object families.
//
// Callers register a family up front with a fixed element size, then
// allocate and free contiguous runs of elements by family name. Within
// a family, the manager keeps one or more page-sized regions, tracks
// free blocks in a worst-fit priority list ordered by size, coalesces
// neighboring free blocks on release, and returns a page to the
// kernel once every block inside it is free.
//
// The manager is single-threaded; concurrent use requires an external
// lock.
//
// Basic usage:
//
//	mgr, err := heapmgr.NewManager(heapmgr.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mgr.RegisterFamily("Connection", 36); err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := mgr.Alloc("Connection", 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mgr.Free(data); err != nil {
//	    log.Fatal(err)
//	}
package heapmgr
