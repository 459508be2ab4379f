package registry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/zotreg/internal/models"
)

// courseFileDelimiter separates title and capacity on each line.
const courseFileDelimiter = ";"

// LoadCourseFile parses the course definition file: one course per line,
// "title;capacity". The file is consumed once at startup; a parse or
// validation failure is fatal to the process.
func LoadCourseFile(path string) ([]models.CourseDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open course file: %w", err)
	}
	defer f.Close()

	validate := validator.New()

	var defs []models.CourseDefinition
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		title, capText, found := strings.Cut(line, courseFileDelimiter)
		if !found {
			return nil, fmt.Errorf("course file line %d: missing %q delimiter", lineNo, courseFileDelimiter)
		}

		capacity, err := strconv.Atoi(strings.TrimSpace(capText))
		if err != nil {
			return nil, fmt.Errorf("course file line %d: bad capacity: %w", lineNo, err)
		}

		def := models.CourseDefinition{Title: strings.TrimSpace(title), Capacity: capacity}
		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("course file line %d: %w", lineNo, err)
		}

		defs = append(defs, def)
		if len(defs) > models.MaxCourses {
			return nil, fmt.Errorf("course file defines more than %d courses", models.MaxCourses)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}

	return defs, nil
}
