package draft

import (
	"sync/atomic"

	"github.com/yash-srivastava19/floaty/internal/notes"
)

// Cache mirrors the persisted collection. It is only ever replaced wholesale
// with the result of a List call, so a reader always sees one complete
// snapshot.
type Cache struct {
	snap atomic.Pointer[[]notes.Note]
}

func NewCache() *Cache {
	c := &Cache{}
	empty := []notes.Note{}
	c.snap.Store(&empty)
	return c
}

// Replace takes ownership of ns.
func (c *Cache) Replace(ns []notes.Note) {
	if ns == nil {
		ns = []notes.Note{}
	}
	c.snap.Store(&ns)
}

// Snapshot must be treated as read-only.
func (c *Cache) Snapshot() []notes.Note {
	return *c.snap.Load()
}

func (c *Cache) Len() int {
	return len(c.Snapshot())
}

func (c *Cache) At(i int) (notes.Note, bool) {
	ns := c.Snapshot()
	if i < 0 || i >= len(ns) {
		return notes.Note{}, false
	}
	return ns[i], true
}

// IndexOf returns the position of the note with id, or -1.
func (c *Cache) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, n := range c.Snapshot() {
		if n.ID == id {
			return i
		}
	}
	return -1
}
