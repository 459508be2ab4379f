package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/zotreg/internal/audit"
	"github.com/noah-isme/zotreg/internal/registry"
	appErrors "github.com/noah-isme/zotreg/pkg/errors"
)

type auditLog interface {
	Action(username, tag string)
	SlotAction(username, tag string, slot int)
	MaskAction(username, tag string, slot int, mask uint32)
}

type counters interface {
	EnrollCommitted()
	DropCommitted()
}

// Registrar implements the enroll/drop/wait/list/schedule state machine
// over the shared registries. Every mutation follows the lock order:
// course lock first, user directory lock second, never nested the other
// way round.
type Registrar struct {
	courses *registry.CourseTable
	users   *registry.UserDirectory
	audit   auditLog
	stats   counters
	logger  *zap.Logger
}

// NewRegistrar constructs a Registrar.
func NewRegistrar(courses *registry.CourseTable, users *registry.UserDirectory, auditLog auditLog, stats counters, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{courses: courses, users: users, audit: auditLog, stats: stats, logger: logger}
}

// CourseList renders one line per defined course, marking full courses
// CLOSED. Each course lock is held only for its own line.
func (r *Registrar) CourseList(username string) string {
	var b strings.Builder
	r.courses.Each(func(c *registry.Course) {
		c.Lock()
		if c.Full() {
			fmt.Fprintf(&b, "Course %d - %s (CLOSED)\n", c.Slot, c.Title)
		} else {
			fmt.Fprintf(&b, "Course %d - %s\n", c.Slot, c.Title)
		}
		c.Unlock()
	})

	r.audit.Action(username, audit.TagCourses)
	return b.String()
}

// Schedule renders the caller's enrollments and wait-list entries from
// the canonical directory record. ErrNoCourses means there is nothing to
// report.
func (r *Registrar) Schedule(username string) (string, error) {
	enrolled, waiting, ok := r.users.Masks(username)
	if !ok {
		r.logger.Warn("schedule for unregistered user", zap.String("username", username))
		return "", appErrors.ErrUserNotFound
	}

	if enrolled == 0 && waiting == 0 {
		r.audit.Action(username, audit.TagNoSched)
		return "", appErrors.ErrNoCourses
	}

	var b strings.Builder
	r.courses.Each(func(c *registry.Course) {
		bit := uint32(1) << uint(c.Slot)
		switch {
		case waiting&bit != 0:
			fmt.Fprintf(&b, "Course %d - %s (WAITING)\n", c.Slot, c.Title)
		case enrolled&bit != 0:
			fmt.Fprintf(&b, "Course %d - %s\n", c.Slot, c.Title)
		}
	})

	r.audit.Action(username, audit.TagSchedule)
	return b.String(), nil
}

// Enroll adds the caller to a course's enrolled set and mirrors the bit
// into the directory record. Returns the post-mutation enrolled mask.
func (r *Registrar) Enroll(username string, slot int) (uint32, error) {
	c, ok := r.courses.Slot(slot)
	if !ok {
		r.audit.SlotAction(username, audit.TagNotFoundE, slot)
		return 0, appErrors.ErrCourseNotFound
	}

	c.Lock()
	defer c.Unlock()

	enrolled, _, ok := r.users.Masks(username)
	if !ok {
		return 0, appErrors.ErrUserNotFound
	}
	if enrolled&(1<<uint(slot)) != 0 || c.Full() {
		r.audit.SlotAction(username, audit.TagNoEnroll, slot)
		return 0, appErrors.ErrActionDenied
	}

	c.Enrolled.PushTail(username)
	mask, _ := r.users.SetEnrolled(username, slot)

	r.audit.MaskAction(username, audit.TagEnroll, slot, mask)
	r.stats.EnrollCommitted()
	return mask, nil
}

// Wait appends the caller to a full course's FIFO wait-list. Waiting is
// only meaningful once the course is at capacity.
func (r *Registrar) Wait(username string, slot int) (uint32, error) {
	c, ok := r.courses.Slot(slot)
	if !ok {
		r.audit.SlotAction(username, audit.TagNotFoundW, slot)
		return 0, appErrors.ErrCourseNotFound
	}

	c.Lock()
	defer c.Unlock()

	enrolled, waiting, ok := r.users.Masks(username)
	if !ok {
		return 0, appErrors.ErrUserNotFound
	}
	bit := uint32(1) << uint(slot)
	if !c.Full() || enrolled&bit != 0 || waiting&bit != 0 {
		r.audit.SlotAction(username, audit.TagNoWait, slot)
		return 0, appErrors.ErrActionDenied
	}

	c.Waiting.PushTail(username)
	mask, _ := r.users.SetWaiting(username, slot)

	r.audit.MaskAction(username, audit.TagWait, slot, mask)
	return mask, nil
}

// Drop removes the caller from a course's enrolled set and, inside the
// same course critical section, promotes the head of the wait-list into
// the freed seat. Returns the caller's post-mutation enrolled mask.
func (r *Registrar) Drop(username string, slot int) (uint32, error) {
	c, ok := r.courses.Slot(slot)
	if !ok {
		r.audit.SlotAction(username, audit.TagNotFoundD, slot)
		return 0, appErrors.ErrCourseNotFound
	}

	c.Lock()
	defer c.Unlock()

	enrolled, _, ok := r.users.Masks(username)
	if !ok {
		return 0, appErrors.ErrUserNotFound
	}
	if enrolled&(1<<uint(slot)) == 0 {
		r.audit.SlotAction(username, audit.TagNoDrop, slot)
		return 0, appErrors.ErrActionDenied
	}

	if _, i, found := c.Enrolled.Find(func(s string) bool { return s == username }); found {
		c.Enrolled.RemoveAt(i)
	}
	mask, _ := r.users.ClearEnrolled(username, slot)

	r.audit.MaskAction(username, audit.TagDrop, slot, mask)
	r.stats.DropCommitted()

	r.promote(c)
	return mask, nil
}

// promote moves the oldest waiter into the freed seat. Caller holds the
// course lock; at most one promotion happens per drop.
func (r *Registrar) promote(c *registry.Course) {
	next, ok := c.Waiting.PopHead()
	if !ok {
		return
	}

	c.Enrolled.PushTail(next)
	mask, ok := r.users.Promote(next, c.Slot)
	if !ok {
		r.logger.Error("wait-list head missing from directory",
			zap.String("username", next), zap.Int("slot", c.Slot))
		return
	}

	r.stats.EnrollCommitted()
	r.audit.MaskAction(next, audit.TagWaitAdd, c.Slot, mask)
}
