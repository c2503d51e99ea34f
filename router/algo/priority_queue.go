package algo

import "container/heap"

type Item struct {
	Value    int
	Priority float64
	// heap中的下标，由heap.Interface维护
	Index int
	// 入队序号，Priority相同时先入先出
	Seq uint64
}

// 小根堆
type PriorityQueue []*Item

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Priority == pq[j].Priority {
		return pq[i].Seq < pq[j].Seq
	}
	return pq[i].Priority < pq[j].Priority
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x any) {
	item := x.(*Item)
	item.Index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[:n-1]
	return item
}

// 搜索前沿，自动分配入队序号
type frontier struct {
	pq  PriorityQueue
	seq uint64
}

func newFrontier() *frontier {
	return &frontier{pq: make(PriorityQueue, 0)}
}

func (f *frontier) push(value int, priority float64) {
	f.seq++
	heap.Push(&f.pq, &Item{Value: value, Priority: priority, Seq: f.seq})
}

func (f *frontier) pop() *Item {
	return heap.Pop(&f.pq).(*Item)
}

func (f *frontier) Len() int {
	return f.pq.Len()
}
