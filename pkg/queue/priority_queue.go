package queue

import (
	"container/heap"
)

type Item struct {
	ItemId      int     // node id of this item
	Priority    float64 // distance from origin to this node
	Predecessor int     // node id of the predecessor
	Index       int     // index of the item in the heap
	Sequence    uint64  // insertion order, breaks ties between equal priorities
}

// A Queue implements the heap.Interface and hold PriorityQueueItems
type Queue struct {
	items    []*Item
	sequence uint64
}

func NewQueueItem(itemId int, priority float64, predecessor int) *Item {
	return &Item{ItemId: itemId, Priority: priority, Predecessor: predecessor, Index: -1}
}

func NewQueue(initialItem *Item) *Queue {
	pq := &Queue{items: make([]*Item, 0)}
	heap.Init(pq)
	if initialItem != nil {
		pq.Add(initialItem)
	}
	return pq
}

// Add pushes the item and stamps its insertion sequence
func (h *Queue) Add(item *Item) {
	item.Sequence = h.sequence
	h.sequence++
	heap.Push(h, item)
}

// Next pops the item with the lowest priority
func (h *Queue) Next() *Item {
	return heap.Pop(h).(*Item)
}

func (h *Queue) Len() int {
	return len(h.items)
}

func (h *Queue) Less(i, j int) bool {
	// MinHeap implementation
	if h.items[i].Priority == h.items[j].Priority {
		return h.items[i].Sequence < h.items[j].Sequence
	}
	return h.items[i].Priority < h.items[j].Priority
}

func (h *Queue) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].Index, h.items[j].Index = i, j
}

func (h *Queue) Push(item interface{}) {
	n := len(h.items)
	pqItem := item.(*Item)
	pqItem.Index = n
	h.items = append(h.items, pqItem)
}

func (h *Queue) Pop() interface{} {
	old := h.items
	n := len(old)
	pqItem := old[n-1]
	old[n-1] = nil
	pqItem.Index = -1 // for safety
	h.items = old[0 : n-1]
	return pqItem
}

// Update lowers or raises the priority of a queued item.
// The item is re-stamped, so it orders behind items already queued with the same priority.
func (h *Queue) Update(pqItem *Item, newPriority float64) {
	pqItem.Priority = newPriority
	pqItem.Sequence = h.sequence
	h.sequence++
	heap.Fix(h, pqItem.Index)
}
