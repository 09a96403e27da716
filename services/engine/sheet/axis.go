// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sheet

import "math/rand"

// axis maps logical row positions to physical storage indices. It is a
// treap of extents, each extent a contiguous run of physical indices, so
// insert, delete, and move of n consecutive rows cost O(log total) plus
// at most two extent splits rather than a memmove of the tail.
type axis struct {
	root *axisNode
	rng  *rand.Rand
}

type axisNode struct {
	left, right *axisNode
	pri         int64
	start       int64 // first physical index of the extent
	count       int64 // extent length, > 0
	subCount    int64 // total length in this subtree
}

func newAxis(seed int64) *axis {
	return &axis{rng: rand.New(rand.NewSource(seed))}
}

func nodeCount(n *axisNode) int64 {
	if n == nil {
		return 0
	}
	return n.subCount
}

func (n *axisNode) update() *axisNode {
	n.subCount = n.count + nodeCount(n.left) + nodeCount(n.right)
	return n
}

// size returns the number of logical positions on the axis.
func (a *axis) size() int64 {
	return nodeCount(a.root)
}

// physAt returns the physical index of logical position idx.
func (a *axis) physAt(idx int64) int64 {
	n := a.root
	for {
		leftCount := nodeCount(n.left)
		switch {
		case idx < leftCount:
			n = n.left
		case idx < leftCount+n.count:
			return n.start + (idx - leftCount)
		default:
			idx -= leftCount + n.count
			n = n.right
		}
	}
}

// splitAt splits n into subtrees holding the first k positions and the
// rest, cutting an extent in two when k falls inside one.
func (a *axis) splitAt(n *axisNode, k int64) (*axisNode, *axisNode) {
	if n == nil {
		return nil, nil
	}
	leftCount := nodeCount(n.left)
	if k <= leftCount {
		l, r := a.splitAt(n.left, k)
		n.left = r
		return l, n.update()
	}
	if k >= leftCount+n.count {
		l, r := a.splitAt(n.right, k-leftCount-n.count)
		n.right = l
		return n.update(), r
	}
	// Split inside this extent.
	cut := k - leftCount
	tail := &axisNode{
		pri:   a.rng.Int63(),
		start: n.start + cut,
		count: n.count - cut,
		right: n.right,
	}
	tail.update()
	n.count = cut
	n.right = nil
	return n.update(), tail
}

func merge(l, r *axisNode) *axisNode {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.pri > r.pri {
		l.right = merge(l.right, r)
		return l.update()
	}
	r.left = merge(l, r.left)
	return r.update()
}

// insertRun places the physical run [start, start+count) at logical
// position pos.
func (a *axis) insertRun(pos, start, count int64) {
	if count == 0 {
		return
	}
	node := &axisNode{
		pri:   a.rng.Int63(),
		start: start,
		count: count,
	}
	node.update()
	l, r := a.splitAt(a.root, pos)
	a.root = merge(merge(l, node), r)
}

// removeRange removes n logical positions starting at pos and returns the
// physical extents they covered, in logical order.
func (a *axis) removeRange(pos, n int64) [][2]int64 {
	l, mr := a.splitAt(a.root, pos)
	m, r := a.splitAt(mr, n)
	a.root = merge(l, r)

	var extents [][2]int64
	var walk func(*axisNode)
	walk = func(nd *axisNode) {
		if nd == nil {
			return
		}
		walk(nd.left)
		extents = append(extents, [2]int64{nd.start, nd.count})
		walk(nd.right)
	}
	walk(m)
	return extents
}

// moveRange moves n logical positions from oldPos to newPos, where newPos
// is interpreted after the removal.
func (a *axis) moveRange(oldPos, n, newPos int64) {
	l, mr := a.splitAt(a.root, oldPos)
	m, r := a.splitAt(mr, n)
	rest := merge(l, r)
	dl, dr := a.splitAt(rest, newPos)
	a.root = merge(merge(dl, m), dr)
}
