package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id       int
	priority float64
	sequence uint64
	index    int
}

func (i *testItem) Priority() float64  { return i.priority }
func (i *testItem) Sequence() uint64   { return i.sequence }
func (i *testItem) Index() int         { return i.index }
func (i *testItem) SetIndex(index int) { i.index = index }
func (i *testItem) String() string     { return fmt.Sprintf("%v:%v ", i.id, i.priority) }

func TestMinHeapStableTieBreak(t *testing.T) {
	h := NewMinHeap[*testItem](nil)
	h.Push(&testItem{id: 0, priority: 2, sequence: 0})
	h.Push(&testItem{id: 1, priority: 1, sequence: 1})
	h.Push(&testItem{id: 2, priority: 1, sequence: 2})
	h.Push(&testItem{id: 3, priority: 1, sequence: 3})
	h.Push(&testItem{id: 4, priority: 0.5, sequence: 4})

	order := make([]int, 0)
	for h.Len() > 0 {
		order = append(order, h.Pop().id)
	}
	assert.Equal(t, []int{4, 1, 2, 3, 0}, order)
}

func TestMinHeapUpdate(t *testing.T) {
	a := &testItem{id: 0, priority: 5}
	b := &testItem{id: 1, priority: 3, sequence: 1}
	h := NewMinHeap([]*testItem{a, b})
	require.Equal(t, 1, h.Peek().id)

	a.priority = 1
	h.Update(a)
	assert.Equal(t, 0, h.Pop().id)
	assert.Equal(t, -1, a.Index())
	assert.Equal(t, 1, h.Len())
}

func TestQueue(t *testing.T) {
	q := NewQueue(NewQueueItem(0, 3, -1))
	first := NewQueueItem(1, 1, 0)
	second := NewQueueItem(2, 1, 0)
	q.Add(first)
	q.Add(second)

	assert.Equal(t, 1, q.Next().ItemId)
	q.Update(second, 0.5)
	assert.Equal(t, 2, q.Next().ItemId)
	assert.Equal(t, 0, q.Next().ItemId)
	assert.Equal(t, 0, q.Len())
}
