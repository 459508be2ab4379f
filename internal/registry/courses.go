// Package registry holds the in-memory shared state of the service: the
// fixed course table and the user directory, each with its own locking
// discipline. A course lock is always acquired before the directory
// lock; the directory lock is never held while taking a course lock.
package registry

import (
	"strings"
	"sync"

	"github.com/noah-isme/zotreg/internal/models"
	"github.com/noah-isme/zotreg/pkg/orderedlist"
)

// Course is one lockable course record. Title and Capacity are immutable
// after load; the member lists are guarded by the record's own lock.
type Course struct {
	mu sync.Mutex

	Slot     int
	Title    string
	Capacity int

	// Enrolled preserves enrollment order; Waiting is strict FIFO.
	Enrolled *orderedlist.List[string]
	Waiting  *orderedlist.List[string]
}

// Lock acquires the record's lock for the duration of one operation.
func (c *Course) Lock() { c.mu.Lock() }

// Unlock releases the record's lock.
func (c *Course) Unlock() { c.mu.Unlock() }

// Full reports whether the course is at capacity. Caller holds the lock.
func (c *Course) Full() bool {
	return c.Enrolled.Len() >= c.Capacity
}

// CourseTable is the fixed array of course slots, populated once at
// startup. Undefined slots stay nil.
type CourseTable struct {
	slots   [models.MaxCourses]*Course
	defined int
}

// NewCourseTable builds the table from parsed definitions, assigning
// slots in file order.
func NewCourseTable(defs []models.CourseDefinition) *CourseTable {
	t := &CourseTable{}
	for i, def := range defs {
		if i >= models.MaxCourses {
			break
		}
		t.slots[i] = &Course{
			Slot:     i,
			Title:    def.Title,
			Capacity: def.Capacity,
			Enrolled: orderedlist.New[string](strings.Compare),
			Waiting:  orderedlist.New[string](strings.Compare),
		}
		t.defined++
	}
	return t
}

// Slot returns the course at index i, or false when the index is out of
// range or the slot is undefined.
func (t *CourseTable) Slot(i int) (*Course, bool) {
	if i < 0 || i >= models.MaxCourses || t.slots[i] == nil {
		return nil, false
	}
	return t.slots[i], true
}

// Defined returns the number of loaded courses.
func (t *CourseTable) Defined() int {
	return t.defined
}

// Each visits every defined course in slot order. Locking is left to fn
// so callers control the critical section per record.
func (t *CourseTable) Each(fn func(*Course)) {
	for _, c := range t.slots {
		if c != nil {
			fn(c)
		}
	}
}
