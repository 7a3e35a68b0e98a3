package cache

// An lruQueue tracks the recency order of the tags that occupy one set. It
// has a fixed length equal to the way associativity. Slot 0 always holds
// the least recently used tag and the last slot the most recently used.
// Fresh queues are filled with InvalidTag placeholders, which never match a
// real tag and are pushed out as the set fills.
type lruQueue struct {
	tags []uint64
}

func newLRUQueue(capacity int) *lruQueue {
	q := &lruQueue{tags: make([]uint64, capacity)}
	for i := range q.tags {
		q.tags[i] = InvalidTag
	}

	return q
}

// Touch records an access to tag. A tag already in the queue moves to the
// most-recent end. A new tag pushes out the least-recent entry and is
// appended at the most-recent end. Touch reports whether the tag was
// already present.
func (q *lruQueue) Touch(tag uint64) bool {
	for i, t := range q.tags {
		if t == tag {
			copy(q.tags[i:], q.tags[i+1:])
			q.tags[len(q.tags)-1] = tag

			return true
		}
	}

	copy(q.tags, q.tags[1:])
	q.tags[len(q.tags)-1] = tag

	return false
}

// LeastRecentlyUsed peeks at the eviction candidate without mutating the
// queue.
func (q *lruQueue) LeastRecentlyUsed() uint64 {
	return q.tags[0]
}

// Order returns a copy of the queue, oldest first.
func (q *lruQueue) Order() []uint64 {
	order := make([]uint64, len(q.tags))
	copy(order, q.tags)

	return order
}
