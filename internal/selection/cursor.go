package selection

import "github.com/f3rmion/kotoba/internal/kotoba"

// Cursor walks a learning-mode priority queue. The zero value is empty and is
// loaded on first use; a cursor built by hand with Priority set is used as is.
// A cursor belongs to one session and is not safe for concurrent use.
type Cursor struct {
	Level    kotoba.Level
	Priority []kotoba.StudyItem
	Pool     []kotoba.StudyItem
	Position int
}

// Exhausted reports whether the cursor needs (re)loading.
func (c *Cursor) Exhausted() bool {
	return c.Position >= len(c.Priority)
}

// Remaining returns how many priority items are left before a reload.
func (c *Cursor) Remaining() int {
	if c.Exhausted() {
		return 0
	}
	return len(c.Priority) - c.Position
}

// Reset empties the cursor so the next draw reloads it. Level is kept.
func (c *Cursor) Reset() {
	c.Priority = nil
	c.Pool = nil
	c.Position = 0
}

func (c *Cursor) load(priority, pool []kotoba.StudyItem) {
	c.Priority = priority
	c.Pool = pool
	c.Position = 0
}
