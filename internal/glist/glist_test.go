package glist

import (
	"testing"
	"unsafe"
)

// sized is a test payload with the list node embedded as its first
// field, mirroring how blockMeta embeds its free-list node.
type sized struct {
	node Node
	size int
}

func containerOf(n *Node) *sized {
	return (*sized)(unsafe.Pointer(n))
}

func sizeCmp(a, b *Node) int {
	as, bs := containerOf(a).size, containerOf(b).size
	switch {
	case as > bs:
		return -1
	case as < bs:
		return 1
	default:
		return 0
	}
}

func TestAddNextAddBefore(t *testing.T) {
	var head Node
	Init(&head)
	if !IsEmpty(&head) {
		t.Fatal("new head should be empty")
	}

	var a, b, c Node
	AddNext(&head, &a)
	AddNext(&a, &b)
	AddBefore(&b, &c)

	if head.Right != &a || a.Right != &c || c.Right != &b {
		t.Fatal("unexpected chain order")
	}
}

func TestRemove(t *testing.T) {
	var head Node
	Init(&head)
	var a, b Node
	AddNext(&head, &a)
	AddNext(&a, &b)

	Remove(&a)
	if a.Left != nil || a.Right != nil {
		t.Fatal("removed node should be detached")
	}
	if head.Right != &b || b.Left != &head {
		t.Fatal("list should close the gap")
	}

	Remove(&b)
	if !IsEmpty(&head) {
		t.Fatal("list should be empty after removing last node")
	}
}

func TestCountAndEach(t *testing.T) {
	var head Node
	Init(&head)
	var nodes [5]Node
	for i := range nodes {
		AddLast(&head, &nodes[i])
	}
	if Count(&head) != 5 {
		t.Fatalf("count = %d, want 5", Count(&head))
	}

	seen := 0
	Each(&head, func(cur *Node) {
		seen++
		if cur == &nodes[2] {
			Remove(cur)
		}
	})
	if seen != 5 {
		t.Fatalf("Each visited %d nodes, want 5", seen)
	}
	if Count(&head) != 4 {
		t.Fatalf("count after in-loop removal = %d, want 4", Count(&head))
	}
}

func TestPriorityInsertNonIncreasing(t *testing.T) {
	var head Node
	Init(&head)

	sizes := []int{8, 32, 4, 32, 16}
	items := make([]*sized, len(sizes))
	for i, sz := range sizes {
		items[i] = &sized{size: sz}
		PriorityInsert(&head, &items[i].node, sizeCmp)
	}

	var got []int
	Each(&head, func(cur *Node) {
		got = append(got, containerOf(cur).size)
	})

	want := []int{32, 32, 16, 8, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// The two size-32 entries must preserve insertion order (ties
	// append after existing equals).
	if containerOf(head.Right) != items[1] {
		t.Fatal("first 32-entry should be the earlier inserted node")
	}
}
