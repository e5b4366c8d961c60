// Package glist is an intrusive doubly-linked list in the spirit of
// the "gluethread" pattern: the list node is embedded by value inside
// the payload struct instead of being separately heap-allocated, and
// an empty sentinel Node serves as the list head.
//
// The block engine uses it for the per-family worst-fit free-block
// priority list. Application pages and registry pages are chained
// through their own link fields, not through glist.
package glist

// Node is an intrusive list link. The zero value is a detached node.
// A Node with no Left is either the sentinel head or unlinked.
type Node struct {
	Left, Right *Node
}

// Init resets node to a detached state.
func Init(node *Node) {
	node.Left = nil
	node.Right = nil
}

// IsEmpty reports whether head (a sentinel with no payload) has no
// successor.
func IsEmpty(head *Node) bool {
	return head.Right == nil
}

// AddNext splices newNode immediately after curr. The prior successor
// of curr, if any, becomes newNode's successor.
func AddNext(curr, newNode *Node) {
	if curr.Right == nil {
		curr.Right = newNode
		newNode.Left = curr
		return
	}
	next := curr.Right
	curr.Right = newNode
	newNode.Left = curr
	newNode.Right = next
	next.Left = newNode
}

// AddBefore splices newNode immediately before curr.
func AddBefore(curr, newNode *Node) {
	if curr.Left == nil {
		newNode.Left = nil
		newNode.Right = curr
		curr.Left = newNode
		return
	}
	prev := curr.Left
	prev.Right = newNode
	newNode.Left = prev
	newNode.Right = curr
	curr.Left = newNode
}

// AddLast appends newNode after the tail of the list headed by head.
func AddLast(head, newNode *Node) {
	tail := head
	for n := head.Right; n != nil; n = n.Right {
		tail = n
	}
	AddNext(tail, newNode)
}

// Remove detaches node from whatever list it is part of. After
// Remove, node is standalone (Left and Right are both nil).
func Remove(node *Node) {
	if node.Left == nil {
		if node.Right != nil {
			node.Right.Left = nil
			node.Right = nil
		}
		return
	}
	if node.Right == nil {
		node.Left.Right = nil
		node.Left = nil
		return
	}
	node.Left.Right = node.Right
	node.Right.Left = node.Left
	node.Left = nil
	node.Right = nil
}

// Count returns the number of nodes in the list, excluding the
// sentinel head.
func Count(head *Node) int {
	n := 0
	for cur := head.Right; cur != nil; cur = cur.Right {
		n++
	}
	return n
}

// Each calls fn for every node in the list, starting with head.Right.
// fn may remove cur from the list during the call: the successor is
// snapshotted before fn runs.
func Each(head *Node, fn func(cur *Node)) {
	cur := head.Right
	for cur != nil {
		next := cur.Right
		fn(cur)
		cur = next
	}
}

// CompareFunc reports the sort order of two payloads: -1 if a sorts
// before b, +1 if after, 0 if equal.
type CompareFunc func(a, b *Node) int

// PriorityInsert inserts newNode into the list headed by head so that
// applying cmp to successive nodes yields a non-increasing sequence
// (the node cmp ranks first sorts first). Ties are appended after
// existing equal nodes, so PriorityInsert preserves FIFO order among
// equal elements.
func PriorityInsert(head, newNode *Node, cmp CompareFunc) {
	Init(newNode)

	if IsEmpty(head) {
		AddNext(head, newNode)
		return
	}

	// Walk until we find the first node that newNode should precede,
	// or reach the tail.
	var last *Node
	for cur := head.Right; cur != nil; cur = cur.Right {
		last = cur
		if cmp(newNode, cur) == -1 {
			AddBefore(cur, newNode)
			return
		}
	}
	AddNext(last, newNode)
}
