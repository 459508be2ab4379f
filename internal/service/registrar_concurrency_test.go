package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/zotreg/internal/models"
	"github.com/noah-isme/zotreg/internal/registry"
)

// syncAudit wraps recordingAudit with a lock for concurrent callers.
type syncAudit struct {
	mu sync.Mutex
	recordingAudit
}

func (a *syncAudit) Action(username, tag string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordingAudit.Action(username, tag)
}

func (a *syncAudit) SlotAction(username, tag string, slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordingAudit.SlotAction(username, tag, slot)
}

func (a *syncAudit) MaskAction(username, tag string, slot int, mask uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordingAudit.MaskAction(username, tag, slot, mask)
}

type syncCounters struct {
	mu sync.Mutex
	recordingCounters
}

func (c *syncCounters) EnrollCommitted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordingCounters.EnrollCommitted()
}

func (c *syncCounters) DropCommitted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordingCounters.DropCommitted()
}

// TestConcurrentEnrollDropKeepsInvariants hammers a small course table
// from many goroutines and checks the capacity bound and the
// bitmask/list mirror afterwards.
func TestConcurrentEnrollDropKeepsInvariants(t *testing.T) {
	defs := []models.CourseDefinition{
		{Title: "A", Capacity: 2},
		{Title: "B", Capacity: 3},
		{Title: "C", Capacity: 1},
	}
	courses := registry.NewCourseTable(defs)
	users := registry.NewUserDirectory()
	reg := NewRegistrar(courses, users, &syncAudit{}, &syncCounters{}, nil)

	const workers = 16
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		username := fmt.Sprintf("user%02d", w)
		users.Admit(username, nil, "")

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				slot := i % len(defs)
				if _, err := reg.Enroll(username, slot); err != nil {
					reg.Wait(username, slot) //nolint:errcheck
				}
				if i%3 == 0 {
					reg.Drop(username, slot) //nolint:errcheck
				}
			}
		}()
	}
	wg.Wait()

	for slot := range defs {
		c, _ := courses.Slot(slot)
		c.Lock()
		assert.LessOrEqual(t, c.Enrolled.Len(), c.Capacity,
			"slot %d exceeded capacity", slot)
		seen := map[string]bool{}
		for _, u := range c.Enrolled.Items() {
			assert.False(t, seen[u], "duplicate enrollment of %s in slot %d", u, slot)
			seen[u] = true
		}
		for _, u := range c.Waiting.Items() {
			assert.False(t, seen[u], "user %s both enrolled and waiting in slot %d", u, slot)
		}
		c.Unlock()
	}

	// quiescent: directory masks mirror list membership exactly
	for _, rep := range users.Reports() {
		assert.Zero(t, rep.Enrolled&rep.Waiting, "overlapping masks for %s", rep.Username)
		for slot := range defs {
			c, _ := courses.Slot(slot)
			c.Lock()
			_, _, inEnrolled := c.Enrolled.Find(func(s string) bool { return s == rep.Username })
			_, _, inWaiting := c.Waiting.Find(func(s string) bool { return s == rep.Username })
			c.Unlock()
			bit := models.SlotBit(slot)
			assert.Equal(t, inEnrolled, rep.Enrolled&bit != 0)
			assert.Equal(t, inWaiting, rep.Waiting&bit != 0)
		}
	}
}
