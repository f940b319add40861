package model

import (
	"fmt"
	"math/rand/v2"
)

type GeneratorOptions struct {
	Courses  int
	Teachers int
	Rooms    int
	Groups   int
	Students int
	Days     int
	Periods  int // Per day
	MaxLoad  int // Maximum courses per student
}

// GenerateInput builds a random instance; the same rng state always yields the same instance. Ids start at 1
func GenerateInput(rng *rand.Rand, options GeneratorOptions) RawModelInput {
	rawInput := RawModelInput{
		Courses:  make([]Course, 0, options.Courses),
		Teachers: make([]Teacher, 0, options.Teachers),
		Rooms:    make([]Room, 0, options.Rooms),
		Groups:   make([]StudentGroup, 0, options.Groups),
		Students: make([]Student, 0, options.Students),
		Slots:    make([]TimeSlot, 0, options.Days*options.Periods),
	}

	for i := range options.Courses {
		rawInput.Courses = append(rawInput.Courses, Course{
			Id:               uint64(i + 1),
			Name:             fmt.Sprintf("Course %d", i+1),
			TheoryCredits:    rng.IntN(4),
			PracticalCredits: rng.IntN(3),
		})
	}
	for i := range options.Teachers {
		rawInput.Teachers = append(rawInput.Teachers, Teacher{
			Id:    uint64(i + 1),
			Name:  fmt.Sprintf("Teacher %d", i+1),
			Email: fmt.Sprintf("teacher%d@school.edu", i+1),
		})
	}
	for i := range options.Rooms {
		rawInput.Rooms = append(rawInput.Rooms, Room{
			Id:       uint64(i + 1),
			Name:     fmt.Sprintf("Room %d", i+1),
			Capacity: 20 + rng.IntN(40),
		})
	}
	for i := range options.Groups {
		rawInput.Groups = append(rawInput.Groups, StudentGroup{
			Id:   uint64(i + 1),
			Name: fmt.Sprintf("Group %d", i+1),
		})
	}
	for day := range options.Days {
		for period := range options.Periods {
			id := uint64(day*options.Periods + period + 1)
			rawInput.Slots = append(rawInput.Slots, TimeSlot{
				Id:     id,
				Day:    uint64(day),
				Period: uint64(period),
				Label:  fmt.Sprintf("D%d-P%d", day+1, period+1),
			})
		}
	}

	if options.Groups == 0 {
		return rawInput
	}
	for i := range options.Students {
		student := Student{
			Id:    uint64(i + 1),
			Name:  fmt.Sprintf("Student %d", i+1),
			RegNo: fmt.Sprintf("S%04d", i+1),
			Group: uint64(rng.IntN(options.Groups) + 1),
		}
		rawInput.Groups[student.Group-1].Size++

		load := 0
		if options.MaxLoad > 0 {
			load = min(rng.IntN(options.MaxLoad+1), options.Courses)
		}
		for _, course := range rng.Perm(options.Courses)[:load] {
			student.Courses = append(student.Courses, uint64(course+1))
		}
		rawInput.Students = append(rawInput.Students, student)
	}

	return rawInput
}
