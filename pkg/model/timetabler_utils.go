package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type unassignableError struct {
	slot uint64
}

func (err unassignableError) Error() string {
	return fmt.Sprintf("not all courses at slot %d can be assigned a room", err.slot)
}

func verify(timetable []Assignment, input ModelInput) bool {
	return len(NewConstraintSet(input).Check(timetable)) == 0
}

func getAttributes(input ModelInput) (courses, teachers, rooms, slots uint64) {
	return uint64(len(input.Courses)), uint64(len(input.Teachers)), uint64(len(input.Rooms)), uint64(len(input.Slots))
}

// rootBounds reports whether the instance passes the counting bounds every solution must meet
func rootBounds(input ModelInput, courses, teachers, rooms, slots uint64) bool {
	if courses > teachers*slots || courses > rooms*slots {
		return false
	}
	return !lo.SomeBy(input.StudentCourses, func(load []uint64) bool {
		return uint64(len(load)) > slots
	})
}

// courseOrder puts the most enrolled courses first; ties keep ascending id order
func courseOrder(courses uint64, evaluator predicateEvaluator, input ModelInput) []uint64 {
	order := make([]uint64, 0, courses)
	for course := range courses {
		order = append(order, course)
	}
	slices.SortStableFunc(order, func(a, b uint64) int {
		return cmp.Or(
			cmp.Compare(evaluator.Load(b), evaluator.Load(a)),
			cmp.Compare(input.Courses[a].Id, input.Courses[b].Id),
		)
	})
	return order
}

// roomAssignment gives every course a room, slot by slot, through a maximum bipartite matching between the courses of a slot and the rooms
func roomAssignment(commitments [][3]uint64, rooms uint64) ([][3]uint64, error) {
	simultaneousCourses := make(map[uint64][]uint64)
	for course, commitment := range commitments {
		slot := commitment[2]
		simultaneousCourses[slot] = append(simultaneousCourses[slot], uint64(course))
	}

	allRooms := make([]uint64, 0, rooms)
	for room := range rooms {
		allRooms = append(allRooms, room)
	}

	assigned := slices.Clone(commitments)
	slots := lo.Keys(simultaneousCourses)
	slices.Sort(slots)
	for _, slot := range slots {
		courses := simultaneousCourses[slot]
		assignments, err := assignRooms(courses, allRooms, func(course, room uint64) bool {
			return true // Rooms carry no constraint of their own besides exclusivity
		})
		if _, ok := err.(unassignableError); ok {
			return nil, unassignableError{slot: slot}
		} else if err != nil {
			return nil, err
		}

		for _, assignment := range assignments {
			course, room := assignment[0], assignment[1]
			assigned[course][1] = room
		}
	}

	return assigned, nil
}

func assignRooms(courses []uint64, rooms []uint64, compatible func(course, room uint64) bool) ([][2]uint64, error) {
	assignments := make([][2]uint64, 0, len(courses))

	// Build neighbors predicate based on compatibility
	neighbors := func(courseAny any, roomAny any) (bool, error) {
		return compatible(courseAny.(uint64), roomAny.(uint64)), nil
	}

	// Transform courses and rooms to slices of any
	coursesAny, roomsAny := lo.Map(courses, func(course uint64, _ int) any { return course }), lo.Map(rooms, func(room uint64, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(courses) {
		return nil, unassignableError{}
	}

	for _, edge := range matching {
		courseIndex, roomIndex := edge.Node1, edge.Node2-len(courses)
		assignments = append(assignments, [2]uint64{courses[courseIndex], rooms[roomIndex]})
	}

	return assignments, nil
}
