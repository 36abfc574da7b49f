package models

import (
	"errors"
	"fmt"
)

// Course 课程标识，检索时按该字段做精确过滤
type Course string

const (
	DataEngineering Course = "data-engineering-zoomcamp"
	MachineLearning Course = "machine-learning-zoomcamp"
	MLOps           Course = "mlops-zoomcamp"
	DefaultCourse          = DataEngineering
)

var ErrUnknownCourse = errors.New("unknown course")

var courseLabels = map[Course]string{
	DataEngineering: "Data Engineering Zoomcamp",
	MachineLearning: "Machine Learning Zoomcamp",
	MLOps:           "MLOps Zoomcamp",
}

// CourseOption is one entry of the course selector.
type CourseOption struct {
	ID    Course `json:"id"`
	Label string `json:"label"`
}

// Courses returns the selectable courses in display order.
func Courses() []CourseOption {
	ids := []Course{DataEngineering, MachineLearning, MLOps}
	out := make([]CourseOption, 0, len(ids))
	for _, id := range ids {
		out = append(out, CourseOption{ID: id, Label: courseLabels[id]})
	}
	return out
}

// ParseCourse 校验课程 id，未知课程返回错误
func ParseCourse(s string) (Course, error) {
	c := Course(s)
	if _, ok := courseLabels[c]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCourse, s)
	}
	return c, nil
}

func (c Course) Label() string {
	return courseLabels[c]
}

func (c Course) String() string {
	return string(c)
}
