package models

// MaxCourses is the number of course slots the service can offer; slot
// indices and user bitmask widths are bounded by it.
const MaxCourses = 32

// CourseDefinition is one parsed line of the course file.
type CourseDefinition struct {
	Title    string `validate:"required"`
	Capacity int    `validate:"min=1"`
}

// CourseReport is one row of the shutdown report for a defined course.
type CourseReport struct {
	Title    string
	Capacity int
	Enrolled []string // enrollment order
	Waiting  []string // FIFO order
}
