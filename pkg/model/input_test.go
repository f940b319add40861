package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instanceJson = `{
	"courses": [
		{"id": 20, "name": "Physics", "theory_credits": 3, "practical_credits": 1},
		{"id": 10, "name": "Algebra", "theory_credits": 4, "practical_credits": 0},
		{"id": 30, "name": "Chemistry", "theory_credits": 2, "practical_credits": 2}
	],
	"teachers": [{"id": 1, "name": "Ada", "email": "ada@school.edu"}, {"id": 2, "name": "Alan"}],
	"rooms": [{"id": 5, "name": "Lab", "capacity": 30, "type": "lab"}],
	"groups": [{"id": 1, "name": "First year", "size": 2}],
	"students": [
		{"id": 2, "name": "Bea", "reg_no": "R2", "group_id": 1, "course_ids": [20]},
		{"id": 1, "name": "Ann", "reg_no": "R1", "group_id": 1, "course_ids": [10, 20]}
	],
	"enrollments": [{"student_id": 2, "course_id": 30}, {"student_id": 1, "course_id": 10}],
	"slots": [{"id": 2, "day": 0, "period": 1}, {"id": 1, "day": 0, "period": 0, "label": "Mon 8:00"}]
}`

func TestInputFromReader(t *testing.T) {
	//** Act
	input, err := InputFromReader(strings.NewReader(instanceJson))

	//** Assert
	require.Nil(t, err)

	// Entities are sorted by id
	assert.Equal(t, []uint64{10, 20, 30}, []uint64{input.Courses[0].Id, input.Courses[1].Id, input.Courses[2].Id})
	assert.Equal(t, uint64(1), input.Students[0].Id)
	assert.Equal(t, uint64(1), input.Slots[0].Id)
	assert.Equal(t, 4, input.Courses[0].TheoryCredits)

	// Student.Courses and Enrollments are merged and deduplicated
	assert.Equal(t, [][]uint64{{0, 1}, {1, 2}}, input.StudentCourses)
	assert.Equal(t, [][]uint64{{0}, {0, 1}, {1}}, input.CourseStudents)
	assert.Equal(t, [][]uint64{{0, 1, 2}}, input.GroupCourses)

	courses, ok := input.EnrolledCourses(2)
	require.True(t, ok)
	assert.Equal(t, []uint64{20, 30}, courses)
	_, ok = input.EnrolledCourses(99)
	assert.False(t, ok)

	// Conflict graph
	assert.True(t, input.ConflictGraph[0][1])
	assert.True(t, input.ConflictGraph[1][2])
	assert.False(t, input.ConflictGraph[0][2])
	assert.True(t, input.ConflictGraph[2][2])
}

func TestLookups(t *testing.T) {
	//** Arrange
	input, err := InputFromReader(strings.NewReader(instanceJson))
	require.Nil(t, err)

	//** Act & Assert
	index, ok := input.CourseIndex(30)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), index)

	index, ok = input.TeacherIndex(2)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), index)

	index, ok = input.RoomIndex(5)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), index)

	index, ok = input.SlotIndex(2)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), index)

	index, ok = input.StudentIndex(2)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), index)

	index, ok = input.GroupIndex(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), index)

	_, ok = input.CourseIndex(11)
	assert.False(t, ok)
	_, ok = input.SlotIndex(0)
	assert.False(t, ok)
}

func TestInputFromJson(t *testing.T) {
	//** Arrange
	file := filepath.Join(t.TempDir(), "instance.json")
	require.Nil(t, os.WriteFile(file, []byte(instanceJson), 0o644))

	//** Act
	input, err := InputFromJson(file)

	//** Assert
	require.Nil(t, err)
	assert.Len(t, input.Courses, 3)

	_, err = InputFromJson(filepath.Join(t.TempDir(), "missing.json"))
	assert.NotNil(t, err)
}

func TestMalformedJson(t *testing.T) {
	_, err := InputFromReader(strings.NewReader(`{"courses": [`))
	assert.NotNil(t, err)

	_, err = InputFromReader(strings.NewReader(`{"courses": "not a list"}`))
	assert.NotNil(t, err)
}

func TestValidation(t *testing.T) {
	base := func() RawModelInput {
		return RawModelInput{
			Courses:  []Course{{Id: 1, Name: "Algebra"}},
			Teachers: []Teacher{{Id: 1, Name: "Ada"}},
			Rooms:    []Room{{Id: 1, Name: "Lab"}},
			Groups:   []StudentGroup{{Id: 1, Name: "First year"}},
			Students: []Student{{Id: 1, Name: "Ann", RegNo: "R1", Group: 1, Courses: []uint64{1}}},
			Slots:    []TimeSlot{{Id: 1}},
		}
	}

	scenarios := []struct {
		name    string
		mutate  func(raw *RawModelInput)
		problem string
	}{
		{"unknown group", func(raw *RawModelInput) { raw.Students[0].Group = 7 }, "unknown group 7"},
		{"unknown enrolled course", func(raw *RawModelInput) { raw.Students[0].Courses = []uint64{9} }, "unknown course 9"},
		{"enrollment of unknown student", func(raw *RawModelInput) {
			raw.Enrollments = []Enrollment{{Student: 4, Course: 1}}
		}, "unknown student 4"},
		{"enrollment of unknown course", func(raw *RawModelInput) {
			raw.Enrollments = []Enrollment{{Student: 1, Course: 8}}
		}, "unknown course 8"},
		{"negative capacity", func(raw *RawModelInput) { raw.Rooms[0].Capacity = -1 }, "field Capacity"},
		{"negative size", func(raw *RawModelInput) { raw.Groups[0].Size = -3 }, "field Size"},
		{"negative credits", func(raw *RawModelInput) { raw.Courses[0].TheoryCredits = -2 }, "field TheoryCredits"},
		{"missing name", func(raw *RawModelInput) { raw.Teachers[0].Name = "" }, "field Name"},
		{"missing registration", func(raw *RawModelInput) { raw.Students[0].RegNo = "" }, "field RegNo"},
		{"invalid email", func(raw *RawModelInput) { raw.Teachers[0].Email = "not-an-email" }, "field Email"},
		{"duplicate course", func(raw *RawModelInput) {
			raw.Courses = append(raw.Courses, Course{Id: 1, Name: "Again"})
		}, "duplicate course id 1"},
		{"duplicate slot", func(raw *RawModelInput) { raw.Slots = append(raw.Slots, TimeSlot{Id: 1}) }, "duplicate slot id 1"},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			raw := base()
			scenario.mutate(&raw)

			//** Act
			_, err := ProcessRawInput(raw)

			//** Assert
			var validationError *ValidationError
			require.True(t, errors.As(err, &validationError))
			assert.Contains(t, validationError.Error(), scenario.problem)
		})
	}

	t.Run("valid base", func(t *testing.T) {
		_, err := ProcessRawInput(base())
		assert.Nil(t, err)
	})

	t.Run("problems are collected together", func(t *testing.T) {
		raw := base()
		raw.Students[0].Group = 7
		raw.Rooms[0].Capacity = -1

		_, err := ProcessRawInput(raw)

		var validationError *ValidationError
		require.True(t, errors.As(err, &validationError))
		assert.Len(t, validationError.Problems, 2)
	})
}

func TestProcessRawInputDoesNotMutate(t *testing.T) {
	//** Arrange
	raw := RawModelInput{
		Courses:  []Course{{Id: 2, Name: "B"}, {Id: 1, Name: "A"}},
		Teachers: []Teacher{{Id: 1, Name: "Ada"}},
		Rooms:    []Room{{Id: 1, Name: "Lab"}},
		Slots:    []TimeSlot{{Id: 1}},
	}

	//** Act
	_, err := ProcessRawInput(raw)

	//** Assert
	require.Nil(t, err)
	assert.Equal(t, uint64(2), raw.Courses[0].Id)
}
