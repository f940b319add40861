package model

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/limaJavier/coursetabling/pkg/sat"
	"github.com/samber/lo"
)

// Rule identifies one of the hard constraints every timetable must satisfy
type Rule int

const (
	RuleCoverage Rule = iota
	RuleTeacher
	RuleRoom
	RuleStudent
	RuleReference // A record names an id that is not part of the model
)

func (rule Rule) String() string {
	switch rule {
	case RuleCoverage:
		return "coverage"
	case RuleTeacher:
		return "teacher_exclusivity"
	case RuleRoom:
		return "room_exclusivity"
	case RuleStudent:
		return "student_non_conflict"
	case RuleReference:
		return "reference"
	}
	return fmt.Sprintf("rule(%d)", int(rule))
}

type Kind int

const (
	ExactlyOne Kind = iota
	AtMostOne
)

// ConstraintGroup bounds the number of true decision variables in Variables.
// Key holds the dense indices the group is about: (course, 0) for coverage, (teacher, slot), (room, slot) and (student, slot) otherwise
type ConstraintGroup struct {
	Rule      Rule
	Kind      Kind
	Key       [2]uint64
	Variables []uint64
}

// Violation reports a broken group; Key holds ids, not dense indices
type Violation struct {
	Rule    Rule
	Key     [2]uint64
	Count   int
	Message string
}

type ConstraintSet interface {
	// Returns every constraint group in a deterministic order (rule first, then key)
	Groups() []ConstraintGroup

	// Evaluates the rules directly over the records and returns every violation found, an empty result means the timetable is valid
	Check(timetable []Assignment) []Violation

	// Encodes the groups as CNF; auxiliary variables are numbered after the decision variables
	ToSAT() sat.SAT

	// Maps the positive decision literals of a solution back to records
	Decode(solution sat.SATSolution) []Assignment
}

type constraintState struct {
	input     ModelInput
	evaluator predicateEvaluator
	indexer   indexer
	generator permutationGenerator

	courses,
	teachers,
	rooms,
	slots uint64
}

type constraintSet struct {
	state constraintState
}

func NewConstraintSet(input ModelInput) ConstraintSet {
	courses, teachers, rooms, slots := getAttributes(input)
	return &constraintSet{
		state: constraintState{
			input:     input,
			evaluator: newPredicateEvaluator(input),
			indexer:   newIndexer(courses, teachers, rooms, slots),
			generator: newPermutationGenerator(courses, teachers, rooms, slots),
			courses:   courses,
			teachers:  teachers,
			rooms:     rooms,
			slots:     slots,
		},
	}
}

func (set *constraintSet) Groups() []ConstraintGroup {
	return collectGroups([]func(state constraintState) []ConstraintGroup{
		coverageGroups,
		teacherGroups,
		roomGroups,
		studentGroups,
	}, set.state)
}

// collectGroups runs every rule on its own goroutine and concatenates the results in rule order
func collectGroups(rules []func(state constraintState) []ConstraintGroup, state constraintState) []ConstraintGroup {
	type collected struct {
		position int
		groups   []ConstraintGroup
	}

	groupsChannel := make(chan collected, len(rules))
	for position, rule := range rules {
		go func() {
			groupsChannel <- collected{position: position, groups: rule(state)}
		}()
	}

	byRule := make([][]ConstraintGroup, len(rules))
	for range rules {
		result := <-groupsChannel
		byRule[result.position] = result.groups
	}
	close(groupsChannel)

	return slices.Concat(byRule...)
}

func coverageGroups(state constraintState) []ConstraintGroup {
	groups := make([]ConstraintGroup, 0, state.courses)
	for course := range state.courses {
		variables := make([]uint64, 0, state.teachers*state.rooms*state.slots)
		for teacher := range state.teachers {
			for room := range state.rooms {
				for slot := range state.slots {
					variables = append(variables, state.indexer.Index(course, teacher, room, slot))
				}
			}
		}
		groups = append(groups, ConstraintGroup{Rule: RuleCoverage, Kind: ExactlyOne, Key: [2]uint64{course, 0}, Variables: variables})
	}
	return groups
}

func teacherGroups(state constraintState) []ConstraintGroup {
	groups := make([]ConstraintGroup, 0, state.teachers*state.slots)
	for teacher := range state.teachers {
		for slot := range state.slots {
			variables := make([]uint64, 0, state.courses*state.rooms)
			for course := range state.courses {
				for room := range state.rooms {
					variables = append(variables, state.indexer.Index(course, teacher, room, slot))
				}
			}
			groups = append(groups, ConstraintGroup{Rule: RuleTeacher, Kind: AtMostOne, Key: [2]uint64{teacher, slot}, Variables: variables})
		}
	}
	return groups
}

func roomGroups(state constraintState) []ConstraintGroup {
	groups := make([]ConstraintGroup, 0, state.rooms*state.slots)
	for room := range state.rooms {
		for slot := range state.slots {
			variables := make([]uint64, 0, state.courses*state.teachers)
			for course := range state.courses {
				for teacher := range state.teachers {
					variables = append(variables, state.indexer.Index(course, teacher, room, slot))
				}
			}
			groups = append(groups, ConstraintGroup{Rule: RuleRoom, Kind: AtMostOne, Key: [2]uint64{room, slot}, Variables: variables})
		}
	}
	return groups
}

// Students with fewer than two courses are already bound by coverage, and students sharing a load produce the same groups, so only the first of them is emitted
func studentGroups(state constraintState) []ConstraintGroup {
	groups := make([]ConstraintGroup, 0)
	seenLoads := make(map[string]bool)

	for student, load := range state.input.StudentCourses {
		if len(load) < 2 {
			continue
		}
		loadKey := fmt.Sprint(load)
		if seenLoads[loadKey] {
			continue
		}
		seenLoads[loadKey] = true

		permutations := state.generator.ConstrainedPermutations([]func(permutation []uint64) bool{
			// Enrolled(s, c) = 1
			func(permutation []uint64) bool {
				course := permutation[0]

				return course == math.MaxUint64 ||

					// Actual predicate
					state.evaluator.Enrolled(uint64(student), course)
			},
		})

		bySlot := make([][]uint64, state.slots)
		for _, permutation := range permutations {
			course, teacher, room, slot := permutation[0], permutation[1], permutation[2], permutation[3]
			bySlot[slot] = append(bySlot[slot], state.indexer.Index(course, teacher, room, slot))
		}
		for slot, variables := range bySlot {
			groups = append(groups, ConstraintGroup{Rule: RuleStudent, Kind: AtMostOne, Key: [2]uint64{uint64(student), uint64(slot)}, Variables: variables})
		}
	}

	return groups
}

func (set *constraintSet) Check(timetable []Assignment) []Violation {
	input := set.state.input
	violations := make([]Violation, 0)

	//** Resolve references
	resolved := make([]Assignment, 0, len(timetable)) // Dense indices
	for _, assignment := range timetable {
		course, courseOk := input.CourseIndex(assignment.Course)
		teacher, teacherOk := input.TeacherIndex(assignment.Teacher)
		room, roomOk := input.RoomIndex(assignment.Room)
		slot, slotOk := input.SlotIndex(assignment.Slot)
		if !courseOk || !teacherOk || !roomOk || !slotOk {
			violations = append(violations, Violation{
				Rule:    RuleReference,
				Key:     [2]uint64{assignment.Course, assignment.Slot},
				Count:   1,
				Message: fmt.Sprintf("assignment %+v references an unknown id", assignment),
			})
			continue
		}
		resolved = append(resolved, Assignment{Course: course, Teacher: teacher, Room: room, Slot: slot})
	}

	//** Count
	courseCount := make([]int, set.state.courses)
	teacherCount := make(map[[2]uint64]int)
	roomCount := make(map[[2]uint64]int)
	courseSlots := make([][]uint64, set.state.courses)
	for _, assignment := range resolved {
		courseCount[assignment.Course]++
		teacherCount[[2]uint64{assignment.Teacher, assignment.Slot}]++
		roomCount[[2]uint64{assignment.Room, assignment.Slot}]++
		courseSlots[assignment.Course] = append(courseSlots[assignment.Course], assignment.Slot)
	}

	//** Coverage
	for course, count := range courseCount {
		if count != 1 {
			id := input.Courses[course].Id
			violations = append(violations, Violation{
				Rule:    RuleCoverage,
				Key:     [2]uint64{id, 0},
				Count:   count,
				Message: fmt.Sprintf("course %d is assigned %d times", id, count),
			})
		}
	}

	//** Teacher exclusivity
	for _, key := range sortedKeys(teacherCount) {
		if count := teacherCount[key]; count > 1 {
			teacher, slot := input.Teachers[key[0]].Id, input.Slots[key[1]].Id
			violations = append(violations, Violation{
				Rule:    RuleTeacher,
				Key:     [2]uint64{teacher, slot},
				Count:   count,
				Message: fmt.Sprintf("teacher %d teaches %d courses at slot %d", teacher, count, slot),
			})
		}
	}

	//** Room exclusivity
	for _, key := range sortedKeys(roomCount) {
		if count := roomCount[key]; count > 1 {
			room, slot := input.Rooms[key[0]].Id, input.Slots[key[1]].Id
			violations = append(violations, Violation{
				Rule:    RuleRoom,
				Key:     [2]uint64{room, slot},
				Count:   count,
				Message: fmt.Sprintf("room %d hosts %d courses at slot %d", room, count, slot),
			})
		}
	}

	//** Student non-conflict
	for student, load := range input.StudentCourses {
		slotCount := make(map[uint64]int)
		for _, course := range load {
			for _, slot := range lo.Uniq(courseSlots[course]) {
				slotCount[slot]++
			}
		}
		slotKeys := lo.Keys(slotCount)
		slices.Sort(slotKeys)
		for _, slot := range slotKeys {
			if count := slotCount[slot]; count > 1 {
				studentId, slotId := input.Students[student].Id, input.Slots[slot].Id
				violations = append(violations, Violation{
					Rule:    RuleStudent,
					Key:     [2]uint64{studentId, slotId},
					Count:   count,
					Message: fmt.Sprintf("student %d attends %d courses at slot %d", studentId, count, slotId),
				})
			}
		}
	}

	return violations
}

func (set *constraintSet) ToSAT() sat.SAT {
	decisionVariables := set.state.indexer.Variables()
	instance := sat.SAT{
		Variables: decisionVariables,
		Clauses:   [][]int64{},
	}

	nextAuxiliary := func() int64 {
		instance.Variables++
		return int64(instance.Variables)
	}

	for _, group := range set.Groups() {
		if group.Kind == ExactlyOne {
			if len(group.Variables) == 0 {
				// Nothing can cover the course, so the instance must be unsatisfiable
				contradiction := nextAuxiliary()
				instance.Clauses = append(instance.Clauses, []int64{contradiction}, []int64{-contradiction})
				continue
			}
			instance.Clauses = append(instance.Clauses, lo.Map(group.Variables, func(variable uint64, _ int) int64 { return int64(variable) }))
		}
		instance.Clauses = append(instance.Clauses, atMostOne(group.Variables, nextAuxiliary)...)
	}

	return instance
}

// atMostOne uses the sequential counter encoding: s_i is true when one of x_1..x_i is true
func atMostOne(variables []uint64, nextAuxiliary func() int64) [][]int64 {
	n := len(variables)
	if n < 2 {
		return nil
	}

	x := lo.Map(variables, func(variable uint64, _ int) int64 { return int64(variable) })
	s := make([]int64, n-1)
	for i := range s {
		s[i] = nextAuxiliary()
	}

	clauses := make([][]int64, 0, 3*n)
	clauses = append(clauses, []int64{-x[0], s[0]})
	for i := 1; i < n-1; i++ {
		clauses = append(clauses,
			[]int64{-x[i], s[i]},
			[]int64{-s[i-1], s[i]},
			[]int64{-x[i], -s[i-1]},
		)
	}
	clauses = append(clauses, []int64{-x[n-1], -s[n-2]})

	return clauses
}

func (set *constraintSet) Decode(solution sat.SATSolution) []Assignment {
	input := set.state.input
	decisionVariables := int64(set.state.indexer.Variables())

	assignments := make([]Assignment, 0, set.state.courses)
	for _, variable := range solution {
		// Acknowledge only positive decision variables, auxiliary ones carry no assignment
		if variable <= 0 || variable > decisionVariables {
			continue
		}
		course, teacher, room, slot := set.state.indexer.Attributes(uint64(variable))
		assignments = append(assignments, Assignment{
			Course:  input.Courses[course].Id,
			Teacher: input.Teachers[teacher].Id,
			Room:    input.Rooms[room].Id,
			Slot:    input.Slots[slot].Id,
		})
	}

	sortAssignments(assignments)
	return assignments
}

func sortedKeys(counts map[[2]uint64]int) [][2]uint64 {
	keys := lo.Keys(counts)
	slices.SortFunc(keys, func(a, b [2]uint64) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})
	return keys
}
