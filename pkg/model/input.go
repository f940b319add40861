package model

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type Course struct {
	Id               uint64 `json:"id"`
	Name             string `json:"name" validate:"required"`
	TheoryCredits    int    `json:"theory_credits" mapstructure:"theory_credits" validate:"gte=0"`
	PracticalCredits int    `json:"practical_credits" mapstructure:"practical_credits" validate:"gte=0"`
}

type Teacher struct {
	Id        uint64 `json:"id"`
	Name      string `json:"name" validate:"required"`
	Expertise string `json:"expertise,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

type Room struct {
	Id       uint64 `json:"id"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Type     string `json:"type,omitempty"`
}

type StudentGroup struct {
	Id   uint64 `json:"id"`
	Name string `json:"name" validate:"required"`
	Size int    `json:"size" validate:"gte=0"`
}

type Student struct {
	Id      uint64   `json:"id"`
	Name    string   `json:"name" validate:"required"`
	RegNo   string   `json:"reg_no" mapstructure:"reg_no" validate:"required"`
	Group   uint64   `json:"group_id" mapstructure:"group_id"`
	Courses []uint64 `json:"course_ids,omitempty" mapstructure:"course_ids"`
}

type Enrollment struct {
	Student uint64 `json:"student_id" mapstructure:"student_id"`
	Course  uint64 `json:"course_id" mapstructure:"course_id"`
}

type TimeSlot struct {
	Id     uint64 `json:"id"`
	Day    uint64 `json:"day"`
	Period uint64 `json:"period"`
	Label  string `json:"label,omitempty"`
}

type RawModelInput struct {
	Courses     []Course       `json:"courses"`
	Teachers    []Teacher      `json:"teachers"`
	Rooms       []Room         `json:"rooms"`
	Groups      []StudentGroup `json:"groups"`
	Students    []Student      `json:"students"`
	Enrollments []Enrollment   `json:"enrollments,omitempty"`
	Slots       []TimeSlot     `json:"slots"`
}

// ModelInput is the validated, read-only view of a problem instance. Every entity slice is sorted by id,
// so the position of an entity in its slice is its dense index, which is the index used by the engine.
type ModelInput struct {
	Courses  []Course
	Teachers []Teacher
	Rooms    []Room
	Groups   []StudentGroup
	Students []Student // Students[i].Courses holds the merged, sorted enrollment of student i
	Slots    []TimeSlot

	StudentCourses [][]uint64 // Dense course indices each student is enrolled in (sorted)
	CourseStudents [][]uint64 // Dense student indices enrolled in each course (sorted)
	GroupCourses   [][]uint64 // Union of the course loads of each group's students (sorted)
	ConflictGraph  [][]bool   // ConflictGraph's coordinate (i, j) = true if and only if course_i and course_j share at least one enrolled student. For completeness we assume that ConflictGraph[i][i] = true for all i

	courseIndex  map[uint64]uint64
	teacherIndex map[uint64]uint64
	roomIndex    map[uint64]uint64
	groupIndex   map[uint64]uint64
	studentIndex map[uint64]uint64
	slotIndex    map[uint64]uint64
}

func InputFromJson(file string) (ModelInput, error) {
	reader, err := os.Open(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot open input file: %w", err)
	}
	defer reader.Close()
	return InputFromReader(reader)
}

func InputFromReader(reader io.Reader) (ModelInput, error) {
	rawInput, err := RawInputFromReader(reader)
	if err != nil {
		return ModelInput{}, err
	}
	return ProcessRawInput(rawInput)
}

func RawInputFromReader(reader io.Reader) (RawModelInput, error) {
	var inputJson map[string]any
	if err := json.NewDecoder(reader).Decode(&inputJson); err != nil {
		return RawModelInput{}, fmt.Errorf("cannot parse input json: %w", err)
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return RawModelInput{}, fmt.Errorf("cannot decode input: %w", err)
	}
	return rawInput, nil
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	//** Validate records
	problems := validateRecords(rawInput)

	//** Sort copies by id so the dense index follows id order
	input := ModelInput{
		Courses:  sortedById(rawInput.Courses, func(course Course) uint64 { return course.Id }),
		Teachers: sortedById(rawInput.Teachers, func(teacher Teacher) uint64 { return teacher.Id }),
		Rooms:    sortedById(rawInput.Rooms, func(room Room) uint64 { return room.Id }),
		Groups:   sortedById(rawInput.Groups, func(group StudentGroup) uint64 { return group.Id }),
		Students: sortedById(rawInput.Students, func(student Student) uint64 { return student.Id }),
		Slots:    sortedById(rawInput.Slots, func(slot TimeSlot) uint64 { return slot.Id }),
	}

	//** Build id indices
	var duplicates []string
	input.courseIndex, duplicates = buildIndex("course", input.Courses, func(course Course) uint64 { return course.Id })
	problems = append(problems, duplicates...)
	input.teacherIndex, duplicates = buildIndex("teacher", input.Teachers, func(teacher Teacher) uint64 { return teacher.Id })
	problems = append(problems, duplicates...)
	input.roomIndex, duplicates = buildIndex("room", input.Rooms, func(room Room) uint64 { return room.Id })
	problems = append(problems, duplicates...)
	input.groupIndex, duplicates = buildIndex("group", input.Groups, func(group StudentGroup) uint64 { return group.Id })
	problems = append(problems, duplicates...)
	input.studentIndex, duplicates = buildIndex("student", input.Students, func(student Student) uint64 { return student.Id })
	problems = append(problems, duplicates...)
	input.slotIndex, duplicates = buildIndex("slot", input.Slots, func(slot TimeSlot) uint64 { return slot.Id })
	problems = append(problems, duplicates...)

	//** Resolve group membership
	for _, student := range input.Students {
		if _, ok := input.groupIndex[student.Group]; !ok {
			problems = append(problems, fmt.Sprintf("student %d references unknown group %d", student.Id, student.Group))
		}
	}

	//** Merge enrollments
	enrolled := make([][]uint64, len(input.Students))
	for i, student := range input.Students {
		for _, course := range student.Courses {
			index, ok := input.courseIndex[course]
			if !ok {
				problems = append(problems, fmt.Sprintf("student %d is enrolled in unknown course %d", student.Id, course))
				continue
			}
			enrolled[i] = append(enrolled[i], index)
		}
	}
	for _, enrollment := range rawInput.Enrollments {
		student, studentOk := input.studentIndex[enrollment.Student]
		course, courseOk := input.courseIndex[enrollment.Course]
		if !studentOk {
			problems = append(problems, fmt.Sprintf("enrollment references unknown student %d", enrollment.Student))
		}
		if !courseOk {
			problems = append(problems, fmt.Sprintf("enrollment references unknown course %d", enrollment.Course))
		}
		if studentOk && courseOk {
			enrolled[student] = append(enrolled[student], course)
		}
	}

	if len(problems) > 0 {
		return ModelInput{}, &ValidationError{Problems: problems}
	}

	//** Derive course loads
	input.StudentCourses = make([][]uint64, len(input.Students))
	input.CourseStudents = make([][]uint64, len(input.Courses))
	for student, courses := range enrolled {
		courses = lo.Uniq(courses)
		slices.Sort(courses)
		input.StudentCourses[student] = courses
		input.Students[student].Courses = lo.Map(courses, func(course uint64, _ int) uint64 { return input.Courses[course].Id })
		for _, course := range courses {
			input.CourseStudents[course] = append(input.CourseStudents[course], uint64(student)) // Students are visited in ascending order, so the result is sorted
		}
	}

	input.GroupCourses = make([][]uint64, len(input.Groups))
	for student, courses := range input.StudentCourses {
		group := input.groupIndex[input.Students[student].Group]
		input.GroupCourses[group] = append(input.GroupCourses[group], courses...)
	}
	for group, courses := range input.GroupCourses {
		courses = lo.Uniq(courses)
		slices.Sort(courses)
		input.GroupCourses[group] = courses
	}

	input.ConflictGraph = buildConflictGraph(len(input.Courses), input.StudentCourses)
	return input, nil
}

func (input ModelInput) CourseIndex(id uint64) (uint64, bool) {
	index, ok := input.courseIndex[id]
	return index, ok
}

func (input ModelInput) TeacherIndex(id uint64) (uint64, bool) {
	index, ok := input.teacherIndex[id]
	return index, ok
}

func (input ModelInput) RoomIndex(id uint64) (uint64, bool) {
	index, ok := input.roomIndex[id]
	return index, ok
}

func (input ModelInput) GroupIndex(id uint64) (uint64, bool) {
	index, ok := input.groupIndex[id]
	return index, ok
}

func (input ModelInput) StudentIndex(id uint64) (uint64, bool) {
	index, ok := input.studentIndex[id]
	return index, ok
}

func (input ModelInput) SlotIndex(id uint64) (uint64, bool) {
	index, ok := input.slotIndex[id]
	return index, ok
}

// EnrolledCourses returns the ids of the courses the student is enrolled in
func (input ModelInput) EnrolledCourses(studentId uint64) ([]uint64, bool) {
	index, ok := input.studentIndex[studentId]
	if !ok {
		return nil, false
	}
	return slices.Clone(input.Students[index].Courses), true
}

func sortedById[T any](records []T, id func(T) uint64) []T {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return sorted
}

func buildIndex[T any](entity string, records []T, id func(T) uint64) (map[uint64]uint64, []string) {
	index := make(map[uint64]uint64, len(records))
	problems := make([]string, 0)
	for i, record := range records {
		if _, ok := index[id(record)]; ok {
			problems = append(problems, fmt.Sprintf("duplicate %s id %d", entity, id(record)))
			continue
		}
		index[id(record)] = uint64(i)
	}
	return index, problems
}

func buildConflictGraph(courses int, studentCourses [][]uint64) [][]bool {
	conflictGraph := make([][]bool, courses)
	for i := range courses {
		conflictGraph[i] = make([]bool, courses)
		conflictGraph[i][i] = true // For completeness we assume that conflictGraph[i][i] = true for all i
	}

	for _, load := range studentCourses {
		for i := range len(load) {
			for j := i + 1; j < len(load); j++ {
				course1, course2 := load[i], load[j]
				conflictGraph[course1][course2] = true
				conflictGraph[course2][course1] = true
			}
		}
	}

	return conflictGraph
}
