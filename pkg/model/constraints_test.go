package model

import (
	"context"
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/coursetabling/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedStudentInput has two courses sharing one student, one teacher, two rooms and two slots
func sharedStudentInput(t *testing.T) ModelInput {
	input, err := ProcessRawInput(RawModelInput{
		Courses:  []Course{{Id: 1, Name: "Algebra"}, {Id: 2, Name: "Physics"}},
		Teachers: []Teacher{{Id: 1, Name: "Ada"}},
		Rooms:    []Room{{Id: 1, Name: "A"}, {Id: 2, Name: "B"}},
		Groups:   []StudentGroup{{Id: 1, Name: "G"}},
		Students: []Student{
			{Id: 1, Name: "Ann", RegNo: "R1", Group: 1, Courses: []uint64{1, 2}},
			{Id: 2, Name: "Bea", RegNo: "R2", Group: 1, Courses: []uint64{1, 2}},
			{Id: 3, Name: "Cid", RegNo: "R3", Group: 1, Courses: []uint64{2}},
		},
		Slots: []TimeSlot{{Id: 1}, {Id: 2}},
	})
	require.Nil(t, err)
	return input
}

func TestGroups(t *testing.T) {
	//** Arrange
	input := sharedStudentInput(t)

	//** Act
	groups := NewConstraintSet(input).Groups()

	//** Assert
	countByRule := make(map[Rule]int)
	for _, group := range groups {
		countByRule[group.Rule]++
		switch group.Rule {
		case RuleCoverage:
			assert.Equal(t, ExactlyOne, group.Kind)
			assert.Len(t, group.Variables, 4)
		case RuleTeacher:
			assert.Equal(t, AtMostOne, group.Kind)
			assert.Len(t, group.Variables, 4)
		case RuleRoom:
			assert.Len(t, group.Variables, 2)
		case RuleStudent:
			assert.Len(t, group.Variables, 4)
		}
	}
	assert.Equal(t, 2, countByRule[RuleCoverage])
	assert.Equal(t, 2, countByRule[RuleTeacher])
	assert.Equal(t, 4, countByRule[RuleRoom])
	assert.Equal(t, 2, countByRule[RuleStudent]) // Ann and Bea share a load, Cid has a single course

	// Deterministic order
	assert.Equal(t, groups, NewConstraintSet(input).Groups())
	for i := 1; i < len(groups); i++ {
		assert.LessOrEqual(t, groups[i-1].Rule, groups[i].Rule)
	}
}

func TestCheck(t *testing.T) {
	input := sharedStudentInput(t)
	constraints := NewConstraintSet(input)

	t.Run("Valid timetable", func(t *testing.T) {
		violations := constraints.Check([]Assignment{
			{Course: 1, Teacher: 1, Room: 1, Slot: 1},
			{Course: 2, Teacher: 1, Room: 1, Slot: 2},
		})
		assert.Empty(t, violations)
	})

	t.Run("Missing course", func(t *testing.T) {
		violations := constraints.Check([]Assignment{{Course: 1, Teacher: 1, Room: 1, Slot: 1}})
		require.Len(t, violations, 1)
		assert.Equal(t, RuleCoverage, violations[0].Rule)
		assert.Equal(t, [2]uint64{2, 0}, violations[0].Key)
		assert.Equal(t, 0, violations[0].Count)
	})

	t.Run("Course assigned twice", func(t *testing.T) {
		violations := constraints.Check([]Assignment{
			{Course: 1, Teacher: 1, Room: 1, Slot: 1},
			{Course: 1, Teacher: 1, Room: 2, Slot: 2},
			{Course: 2, Teacher: 1, Room: 1, Slot: 2},
		})
		rules := ruleSet(violations)
		assert.True(t, rules[RuleCoverage])
		assert.True(t, rules[RuleTeacher])
	})

	t.Run("Shared slot", func(t *testing.T) {
		violations := constraints.Check([]Assignment{
			{Course: 1, Teacher: 1, Room: 1, Slot: 1},
			{Course: 2, Teacher: 1, Room: 1, Slot: 1},
		})
		rules := ruleSet(violations)
		assert.True(t, rules[RuleTeacher])
		assert.True(t, rules[RuleRoom])
		assert.True(t, rules[RuleStudent])
		assert.False(t, rules[RuleCoverage])

		studentViolations := 0
		for _, violation := range violations {
			if violation.Rule == RuleStudent {
				studentViolations++
				assert.Equal(t, 2, violation.Count)
			}
		}
		assert.Equal(t, 2, studentViolations) // Ann and Bea
	})

	t.Run("Unknown reference", func(t *testing.T) {
		violations := constraints.Check([]Assignment{
			{Course: 1, Teacher: 9, Room: 1, Slot: 1},
			{Course: 2, Teacher: 1, Room: 1, Slot: 2},
		})
		rules := ruleSet(violations)
		assert.True(t, rules[RuleReference])
		assert.True(t, rules[RuleCoverage])
	})
}

func TestAtMostOneEncoding(t *testing.T) {
	solver := sat.NewGiniSolver()

	for n := 1; n <= 5; n++ {
		for mask := range 1 << n {
			//** Arrange
			variables := make([]uint64, n)
			for i := range n {
				variables[i] = uint64(i + 1)
			}
			instance := sat.SAT{Variables: uint64(n)}
			instance.Clauses = atMostOne(variables, func() int64 {
				instance.Variables++
				return int64(instance.Variables)
			})
			for i := range n {
				if mask&(1<<i) != 0 {
					instance.Clauses = append(instance.Clauses, []int64{int64(i + 1)})
				} else {
					instance.Clauses = append(instance.Clauses, []int64{-int64(i + 1)})
				}
			}

			//** Act
			solution, err := solver.Solve(context.Background(), instance)

			//** Assert
			require.Nil(t, err)
			assert.Equal(t, bits.OnesCount(uint(mask)) <= 1, solution != nil, "n=%d mask=%b", n, mask)
		}
	}
}

func TestToSAT(t *testing.T) {
	solver := sat.NewGiniSolver()

	t.Run("Engine solutions satisfy the encoding", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(17, 19))
		for range 10 {
			//** Arrange
			input := generateInput(t, rng, smallOptions(rng))
			result, err := NewEmbeddedRoomTimetabler(Budget{}).Build(context.Background(), input)
			require.Nil(t, err)
			if result.Status != StatusSolved {
				continue
			}

			constraints := NewConstraintSet(input)
			instance := constraints.ToSAT()
			indexer := constraints.(*constraintSet).state.indexer
			for _, assignment := range result.Assignments {
				course, _ := input.CourseIndex(assignment.Course)
				teacher, _ := input.TeacherIndex(assignment.Teacher)
				room, _ := input.RoomIndex(assignment.Room)
				slot, _ := input.SlotIndex(assignment.Slot)
				instance.Clauses = append(instance.Clauses, []int64{int64(indexer.Index(course, teacher, room, slot))})
			}

			//** Act
			solution, err := solver.Solve(context.Background(), instance)

			//** Assert
			require.Nil(t, err)
			require.NotNil(t, solution)
			assert.Equal(t, result.Assignments, constraints.Decode(solution))
		}
	})

	t.Run("Uncoverable course", func(t *testing.T) {
		input, err := ProcessRawInput(RawModelInput{
			Courses: []Course{{Id: 1, Name: "Algebra"}},
			Rooms:   []Room{{Id: 1, Name: "A"}},
			Slots:   []TimeSlot{{Id: 1}},
		})
		require.Nil(t, err)

		solution, err := solver.Solve(context.Background(), NewConstraintSet(input).ToSAT())

		assert.Nil(t, err)
		assert.Nil(t, solution)
	})
}

func ruleSet(violations []Violation) map[Rule]bool {
	rules := make(map[Rule]bool)
	for _, violation := range violations {
		rules[violation.Rule] = true
	}
	return rules
}
