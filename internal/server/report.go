package server

import (
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/zotreg/internal/models"
	"github.com/noah-isme/zotreg/internal/registry"
)

// WriteCourseReport prints one line per defined course: title, capacity,
// enrolled count, enrolled names in enrollment order and waiters in FIFO
// order, both semicolon-joined. Each course lock is held for its line.
func WriteCourseReport(w io.Writer, courses *registry.CourseTable) {
	courses.Each(func(c *registry.Course) {
		c.Lock()
		fmt.Fprintf(w, "%s, %d, %d, %s, %s\n",
			c.Title,
			c.Capacity,
			c.Enrolled.Len(),
			strings.Join(c.Enrolled.Items(), ";"),
			strings.Join(c.Waiting.Items(), ";"))
		c.Unlock()
	})
}

// WriteUserReport prints one line per registered user: username and the
// two bitmasks in decimal. Called after all sessions are joined.
func WriteUserReport(w io.Writer, reports []models.UserReport) {
	for _, r := range reports {
		fmt.Fprintf(w, "%s, %d, %d\n", r.Username, r.Enrolled, r.Waiting)
	}
}

// WriteStatsLine prints the aggregate counters.
func WriteStatsLine(w io.Writer, stats models.Stats) {
	fmt.Fprintf(w, "%d, %d, %d, %d\n", stats.Clients, stats.Sessions, stats.Adds, stats.Drops)
}
