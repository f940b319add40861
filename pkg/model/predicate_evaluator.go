package model

type predicateEvaluator interface {
	// Checks whether course1 and course2 share at least one enrolled student
	Conflicting(course1, course2 uint64) bool

	// Checks whether the student is enrolled in the course
	Enrolled(student, course uint64) bool

	// Returns the number of students enrolled in the course
	Load(course uint64) int
}
