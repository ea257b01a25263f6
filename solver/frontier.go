package solver

import "container/heap"

type node struct {
	score int
	cost  int
	seq   int
	state Assignment
}

// nodeQueue is a min-heap on score; equal scores pop in insertion order.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score < q[j].score
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

type frontier struct {
	q   nodeQueue
	seq int
}

func (f *frontier) push(score, cost int, a Assignment) {
	heap.Push(&f.q, &node{score: score, cost: cost, seq: f.seq, state: a})
	f.seq++
}

func (f *frontier) pop() (*node, bool) {
	if len(f.q) == 0 {
		return nil, false
	}
	return heap.Pop(&f.q).(*node), true
}

func (f *frontier) Len() int {
	return len(f.q)
}
