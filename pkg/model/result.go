package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrInfeasible       = errors.New("no timetable satisfies the hard constraints")
	ErrDeadlineExceeded = errors.New("search stopped before completion")
)

type Status int

const (
	StatusSolved Status = iota
	StatusInfeasible
	StatusDeadlineExceeded
)

var statusNames = map[Status]string{
	StatusSolved:           "solved",
	StatusInfeasible:       "infeasible",
	StatusDeadlineExceeded: "deadline_exceeded",
}

func (status Status) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(status))
}

func (status Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[status]; !ok {
		return nil, fmt.Errorf("unknown status %d", int(status))
	}
	return []byte(status.String()), nil
}

func (status *Status) UnmarshalText(text []byte) error {
	for candidate, name := range statusNames {
		if name == string(text) {
			*status = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Assignment is one selected cell of the (course, teacher, room, slot) decision space, expressed in ids
type Assignment struct {
	Course  uint64 `json:"course_id"`
	Teacher uint64 `json:"teacher_id"`
	Room    uint64 `json:"room_id"`
	Slot    uint64 `json:"time_slot_id"`
}

type Stats struct {
	Strategy   string        `json:"strategy"`
	Steps      uint64        `json:"steps"`
	Backtracks uint64        `json:"backtracks"`
	Duration   time.Duration `json:"duration_ns"`
}

// Result holds assignments only when Status is StatusSolved
type Result struct {
	Status      Status       `json:"status"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Stats       Stats        `json:"stats"`
}

func (result Result) Err() error {
	switch result.Status {
	case StatusInfeasible:
		return ErrInfeasible
	case StatusDeadlineExceeded:
		return ErrDeadlineExceeded
	}
	return nil
}

// ScheduleEntry is the display form of an assignment
type ScheduleEntry struct {
	CourseName  string `json:"course_name" validate:"required"`
	TeacherName string `json:"teacher_name" validate:"required"`
	RoomName    string `json:"room_name" validate:"required"`
	Day         uint64 `json:"day"`
	Period      uint64 `json:"period"`
	SlotLabel   string `json:"slot"`
}

// Describe joins the catalogue names into the assignments; assignments with unknown ids are skipped
func Describe(input ModelInput, assignments []Assignment) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(assignments))
	for _, assignment := range assignments {
		course, courseOk := input.CourseIndex(assignment.Course)
		teacher, teacherOk := input.TeacherIndex(assignment.Teacher)
		room, roomOk := input.RoomIndex(assignment.Room)
		slot, slotOk := input.SlotIndex(assignment.Slot)
		if !courseOk || !teacherOk || !roomOk || !slotOk {
			continue
		}

		timeSlot := input.Slots[slot]
		label := timeSlot.Label
		if label == "" {
			label = fmt.Sprint(timeSlot.Id)
		}
		entries = append(entries, ScheduleEntry{
			CourseName:  input.Courses[course].Name,
			TeacherName: input.Teachers[teacher].Name,
			RoomName:    input.Rooms[room].Name,
			Day:         timeSlot.Day,
			Period:      timeSlot.Period,
			SlotLabel:   label,
		})
	}
	return entries
}

// solved translates the commitments (dense indices, one [teacher, room, slot] per course) into an ordered result
func solved(input ModelInput, commitments [][3]uint64, stats Stats) Result {
	assignments := make([]Assignment, 0, len(commitments))
	for course, commitment := range commitments {
		teacher, room, slot := commitment[0], commitment[1], commitment[2]
		assignments = append(assignments, Assignment{
			Course:  input.Courses[course].Id,
			Teacher: input.Teachers[teacher].Id,
			Room:    input.Rooms[room].Id,
			Slot:    input.Slots[slot].Id,
		})
	}
	sortAssignments(assignments)
	return Result{Status: StatusSolved, Assignments: assignments, Stats: stats}
}

// failed never carries assignments, partial commitments of an unfinished search are not a timetable
func failed(status Status, stats Stats) Result {
	return Result{Status: status, Stats: stats}
}

func sortAssignments(assignments []Assignment) {
	slices.SortFunc(assignments, func(a, b Assignment) int {
		return cmp.Or(
			cmp.Compare(a.Course, b.Course),
			cmp.Compare(a.Teacher, b.Teacher),
			cmp.Compare(a.Room, b.Room),
			cmp.Compare(a.Slot, b.Slot),
		)
	})
}
