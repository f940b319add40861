package model

import "slices"

type predicateEvaluatorStandard struct {
	modelInput ModelInput
}

func newPredicateEvaluator(modelInput ModelInput) predicateEvaluator {
	return &predicateEvaluatorStandard{modelInput: modelInput}
}

func (evaluator *predicateEvaluatorStandard) Conflicting(course1, course2 uint64) bool {
	return course1 != course2 && evaluator.modelInput.ConflictGraph[course1][course2]
}

func (evaluator *predicateEvaluatorStandard) Enrolled(student, course uint64) bool {
	_, found := slices.BinarySearch(evaluator.modelInput.StudentCourses[student], course)
	return found
}

func (evaluator *predicateEvaluatorStandard) Load(course uint64) int {
	return len(evaluator.modelInput.CourseStudents[course])
}
