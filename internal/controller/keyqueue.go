package controller

import "github.com/benhurstein/teclado/internal/key"

// keyQueue is a FIFO of in-flight keys, used for both waitingKeys and
// keysBeingHeld (spec §4.7). The original firmware threads an intrusive
// linked list through each Key; here a slice over the fixed 36-key array
// gives the same FIFO-with-arbitrary-removal behavior without per-key
// next pointers.
type keyQueue struct {
	keys []*key.Key
}

func (q *keyQueue) empty() bool {
	return len(q.keys) == 0
}

func (q *keyQueue) first() *key.Key {
	if q.empty() {
		return nil
	}
	return q.keys[0]
}

func (q *keyQueue) insert(k *key.Key) {
	q.keys = append(q.keys, k)
}

func (q *keyQueue) removeFirst() *key.Key {
	if q.empty() {
		return nil
	}
	k := q.keys[0]
	q.keys = q.keys[1:]
	return k
}

func (q *keyQueue) remove(k *key.Key) {
	for i, v := range q.keys {
		if v == k {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			return
		}
	}
}

func (q *keyQueue) contains(k *key.Key) bool {
	for _, v := range q.keys {
		if v == k {
			return true
		}
	}
	return false
}
