package model

import (
	"context"
	"time"
)

const (
	free          = -1
	contextPeriod = 256 // Steps between two context checks
)

type searchOutcome int

const (
	outcomeSolved searchOutcome = iota
	outcomeExhausted
	outcomeAborted
)

// commitmentTable is owned by one solve. Cells hold the dense index of the committed course or free
type commitmentTable struct {
	teacherSlot [][]int
	roomSlot    [][]int // Only used when rooms are embedded in the candidates
	studentSlot [][]int

	roomsUsed    []uint64 // Per slot; replaces roomSlot when rooms are assigned afterwards
	freeTeachers []uint64 // Per slot
	blocked      [][]int  // blocked[course][slot] counts committed courses conflicting with course at slot

	teacherLoad []int
	roomLoad    []int
	slotLoad    []int
}

func newCommitmentTable(courses, teachers, rooms, slots, students uint64) *commitmentTable {
	table := &commitmentTable{
		teacherSlot:  freeMatrix(teachers, slots),
		roomSlot:     freeMatrix(rooms, slots),
		studentSlot:  freeMatrix(students, slots),
		roomsUsed:    make([]uint64, slots),
		freeTeachers: make([]uint64, slots),
		blocked:      make([][]int, courses),
		teacherLoad:  make([]int, teachers),
		roomLoad:     make([]int, rooms),
		slotLoad:     make([]int, slots),
	}
	for slot := range slots {
		table.freeTeachers[slot] = teachers
	}
	for course := range courses {
		table.blocked[course] = make([]int, slots)
	}
	return table
}

func freeMatrix(rows, columns uint64) [][]int {
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, columns)
		for j := range matrix[i] {
			matrix[i][j] = free
		}
	}
	return matrix
}

// searcher holds the state of one backtracking solve
type searcher struct {
	ctx       context.Context
	input     ModelInput
	evaluator predicateEvaluator
	budget    Budget
	embedded  bool // Whether rooms are part of each candidate
	symmetry  bool // Whether interchangeable resources (unused ones, and lower free ones within a slot) are pruned

	courses, teachers, rooms, slots uint64

	order       []uint64   // Courses in branching order
	roomDomain  []uint64   // Rooms tried per candidate; a single placeholder when rooms are assigned afterwards
	assigned    []bool     // Per course
	neighbors   [][]uint64 // Conflicting courses per course
	table       *commitmentTable
	commitments [][3]uint64 // Per course: teacher, room, slot

	steps      uint64
	backtracks uint64
}

func newSearcher(ctx context.Context, input ModelInput, budget Budget, embedded bool) *searcher {
	courses, teachers, rooms, slots := getAttributes(input)
	evaluator := newPredicateEvaluator(input)

	neighbors := make([][]uint64, courses)
	for course := range courses {
		for other := range courses {
			if evaluator.Conflicting(course, other) {
				neighbors[course] = append(neighbors[course], other)
			}
		}
	}

	roomDomain := []uint64{0}
	if embedded {
		roomDomain = make([]uint64, 0, rooms)
		for room := range rooms {
			roomDomain = append(roomDomain, room)
		}
	}

	return &searcher{
		ctx:         ctx,
		input:       input,
		evaluator:   evaluator,
		budget:      budget,
		embedded:    embedded,
		symmetry:    true,
		courses:     courses,
		teachers:    teachers,
		rooms:       rooms,
		slots:       slots,
		order:       courseOrder(courses, evaluator, input),
		roomDomain:  roomDomain,
		assigned:    make([]bool, courses),
		neighbors:   neighbors,
		table:       newCommitmentTable(courses, teachers, rooms, slots, uint64(len(input.Students))),
		commitments: make([][3]uint64, courses),
	}
}

func (searcher *searcher) run() (searchOutcome, time.Duration) {
	start := time.Now()

	if searcher.ctx.Err() != nil {
		return outcomeAborted, time.Since(start)
	}
	if !rootBounds(searcher.input, searcher.courses, searcher.teachers, searcher.rooms, searcher.slots) {
		return outcomeExhausted, time.Since(start)
	}

	return searcher.search(0), time.Since(start)
}

// search assigns the course at the given depth of the branching order and recurses; chronological backtracking happens on return
func (searcher *searcher) search(depth int) searchOutcome {
	if depth == len(searcher.order) {
		return outcomeSolved
	}
	course := searcher.order[depth]

	firstTeacher, firstRoom, firstSlot := searcher.firstUnused()

	for teacher := range searcher.teachers {
		if searcher.interchangeable(searcher.table.teacherLoad[teacher], teacher, firstTeacher) {
			continue
		}
		for _, room := range searcher.roomDomain {
			if searcher.embedded && searcher.interchangeable(searcher.table.roomLoad[room], room, firstRoom) {
				continue
			}
			for slot := range searcher.slots {
				if searcher.interchangeable(searcher.table.slotLoad[slot], slot, firstSlot) {
					continue
				}
				if !searcher.legal(course, teacher, room, slot) || searcher.dominated(teacher, room, slot) {
					continue
				}

				//** Budget
				if searcher.budget.MaxSteps > 0 && searcher.steps >= searcher.budget.MaxSteps {
					return outcomeAborted
				}
				if searcher.steps%contextPeriod == 0 && searcher.ctx.Err() != nil {
					return outcomeAborted
				}
				searcher.steps++

				//** Commit and propagate
				searcher.commit(course, teacher, room, slot)
				if searcher.forwardCheck() {
					switch searcher.search(depth + 1) {
					case outcomeSolved:
						return outcomeSolved
					case outcomeAborted:
						return outcomeAborted
					}
				}
				searcher.undo(course, teacher, room, slot)
				searcher.backtracks++
			}
		}
	}

	return outcomeExhausted
}

// interchangeable reports whether an unused resource can be skipped because a lower unused one is tried instead
func (searcher *searcher) interchangeable(load int, resource, firstUnused uint64) bool {
	return searcher.symmetry && load == 0 && resource != firstUnused
}

// dominated reports whether a lower teacher, or in embedded mode a lower room, is free at the slot. Teachers and rooms
// only constrain each other within a slot, so swapping the two inside that slot maps every completion of this
// candidate onto a completion of the lower one, which is tried first
func (searcher *searcher) dominated(teacher, room, slot uint64) bool {
	if !searcher.symmetry {
		return false
	}
	table := searcher.table
	for lower := range teacher {
		if table.teacherSlot[lower][slot] == free {
			return true
		}
	}
	if searcher.embedded {
		for lower := range room {
			if table.roomSlot[lower][slot] == free {
				return true
			}
		}
	}
	return false
}

func (searcher *searcher) firstUnused() (teacher, room, slot uint64) {
	teacher, room, slot = searcher.teachers, searcher.rooms, searcher.slots
	for candidate, load := range searcher.table.teacherLoad {
		if load == 0 {
			teacher = uint64(candidate)
			break
		}
	}
	for candidate, load := range searcher.table.roomLoad {
		if load == 0 {
			room = uint64(candidate)
			break
		}
	}
	for candidate, load := range searcher.table.slotLoad {
		if load == 0 {
			slot = uint64(candidate)
			break
		}
	}
	return teacher, room, slot
}

func (searcher *searcher) legal(course, teacher, room, slot uint64) bool {
	table := searcher.table
	if table.teacherSlot[teacher][slot] != free {
		return false
	}
	if searcher.embedded && table.roomSlot[room][slot] != free {
		return false
	}
	if !searcher.embedded && table.roomsUsed[slot] >= searcher.rooms {
		return false
	}
	for _, student := range searcher.input.CourseStudents[course] {
		if table.studentSlot[student][slot] != free {
			return false
		}
	}
	return true
}

func (searcher *searcher) commit(course, teacher, room, slot uint64) {
	table := searcher.table
	table.teacherSlot[teacher][slot] = int(course)
	table.freeTeachers[slot]--
	table.teacherLoad[teacher]++
	table.slotLoad[slot]++
	if searcher.embedded {
		table.roomSlot[room][slot] = int(course)
		table.roomLoad[room]++
	}
	table.roomsUsed[slot]++
	for _, student := range searcher.input.CourseStudents[course] {
		table.studentSlot[student][slot] = int(course)
	}
	for _, neighbor := range searcher.neighbors[course] {
		table.blocked[neighbor][slot]++
	}

	searcher.assigned[course] = true
	searcher.commitments[course] = [3]uint64{teacher, room, slot}
}

func (searcher *searcher) undo(course, teacher, room, slot uint64) {
	table := searcher.table
	table.teacherSlot[teacher][slot] = free
	table.freeTeachers[slot]++
	table.teacherLoad[teacher]--
	table.slotLoad[slot]--
	if searcher.embedded {
		table.roomSlot[room][slot] = free
		table.roomLoad[room]--
	}
	table.roomsUsed[slot]--
	for _, student := range searcher.input.CourseStudents[course] {
		table.studentSlot[student][slot] = free
	}
	for _, neighbor := range searcher.neighbors[course] {
		table.blocked[neighbor][slot]--
	}

	searcher.assigned[course] = false
	searcher.commitments[course] = [3]uint64{}
}

// forwardCheck verifies every unassigned course still has a slot with no conflicting commitment, a free teacher and a free room
func (searcher *searcher) forwardCheck() bool {
	table := searcher.table
	for course := range searcher.courses {
		if searcher.assigned[course] {
			continue
		}
		viable := false
		for slot := range searcher.slots {
			if table.blocked[course][slot] == 0 && table.freeTeachers[slot] > 0 && table.roomsUsed[slot] < searcher.rooms {
				viable = true
				break
			}
		}
		if !viable {
			return false
		}
	}
	return true
}

func (searcher *searcher) stats(strategy string, duration time.Duration) Stats {
	return Stats{
		Strategy:   strategy,
		Steps:      searcher.steps,
		Backtracks: searcher.backtracks,
		Duration:   duration,
	}
}
