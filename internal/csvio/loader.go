package csvio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetabling/pkg/model"
)

const (
	CoursesFile     = "courses.csv"
	TeachersFile    = "teachers.csv"
	RoomsFile       = "rooms.csv"
	GroupsFile      = "groups.csv"
	StudentsFile    = "students.csv"
	EnrollmentsFile = "enrollments.csv"
	SlotsFile       = "slots.csv"
)

type courseRow struct {
	Id               uint64 `csv:"id"`
	Name             string `csv:"name"`
	TheoryCredits    int    `csv:"theory_credits"`
	PracticalCredits int    `csv:"practical_credits"`
}

type teacherRow struct {
	Id        uint64 `csv:"id"`
	Name      string `csv:"name"`
	Expertise string `csv:"expertise"`
	Email     string `csv:"email"`
}

type roomRow struct {
	Id       uint64 `csv:"id"`
	Name     string `csv:"name"`
	Capacity int    `csv:"capacity"`
	Type     string `csv:"type"`
}

type groupRow struct {
	Id   uint64 `csv:"id"`
	Name string `csv:"name"`
	Size int    `csv:"size"`
}

type studentRow struct {
	Id        uint64 `csv:"id"`
	Name      string `csv:"name"`
	RegNo     string `csv:"reg_no"`
	GroupName string `csv:"group_name"`
}

type enrollmentRow struct {
	RegNo      string `csv:"reg_no"`
	CourseName string `csv:"course_name"`
}

type slotRow struct {
	Id     uint64 `csv:"id"`
	Day    uint64 `csv:"day"`
	Period uint64 `csv:"period"`
	Label  string `csv:"label"`
}

// ImportError lists every unresolved or ambiguous reference found in a catalogue
type ImportError struct {
	Problems []string
}

func (err *ImportError) Error() string {
	return fmt.Sprintf("invalid catalogue: %s", strings.Join(err.Problems, "; "))
}

// LoadCatalogue reads a catalogue directory into a raw model input. Groups, students and enrollments are optional files.
// Group, student and course references are given by name or registration number and are resolved to ids here
func LoadCatalogue(dir string) (model.RawModelInput, error) {
	var (
		courses     []*courseRow
		teachers    []*teacherRow
		rooms       []*roomRow
		groups      []*groupRow
		students    []*studentRow
		enrollments []*enrollmentRow
		slots       []*slotRow
	)

	//** Read files
	required := map[string]any{CoursesFile: &courses, TeachersFile: &teachers, RoomsFile: &rooms, SlotsFile: &slots}
	optional := map[string]any{GroupsFile: &groups, StudentsFile: &students, EnrollmentsFile: &enrollments}
	for name, rows := range required {
		if err := readRows(filepath.Join(dir, name), rows); err != nil {
			return model.RawModelInput{}, err
		}
	}
	for name, rows := range optional {
		if err := readRows(filepath.Join(dir, name), rows); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return model.RawModelInput{}, err
		}
	}

	//** Resolve names
	problems := make([]string, 0)
	groupIds, duplicates := indexByName("group name", groups, func(row *groupRow) (string, uint64) { return row.Name, row.Id })
	problems = append(problems, duplicates...)
	courseIds, duplicates := indexByName("course name", courses, func(row *courseRow) (string, uint64) { return row.Name, row.Id })
	problems = append(problems, duplicates...)
	studentIds, duplicates := indexByName("registration number", students, func(row *studentRow) (string, uint64) { return row.RegNo, row.Id })
	problems = append(problems, duplicates...)

	input := model.RawModelInput{
		Courses: lo.Map(courses, func(row *courseRow, _ int) model.Course {
			return model.Course{Id: row.Id, Name: row.Name, TheoryCredits: row.TheoryCredits, PracticalCredits: row.PracticalCredits}
		}),
		Teachers: lo.Map(teachers, func(row *teacherRow, _ int) model.Teacher {
			return model.Teacher{Id: row.Id, Name: row.Name, Expertise: row.Expertise, Email: row.Email}
		}),
		Rooms: lo.Map(rooms, func(row *roomRow, _ int) model.Room {
			return model.Room{Id: row.Id, Name: row.Name, Capacity: row.Capacity, Type: row.Type}
		}),
		Groups: lo.Map(groups, func(row *groupRow, _ int) model.StudentGroup {
			return model.StudentGroup{Id: row.Id, Name: row.Name, Size: row.Size}
		}),
		Slots: lo.Map(slots, func(row *slotRow, _ int) model.TimeSlot {
			return model.TimeSlot{Id: row.Id, Day: row.Day, Period: row.Period, Label: row.Label}
		}),
	}

	for _, row := range students {
		group, ok := groupIds[row.GroupName]
		if !ok {
			problems = append(problems, fmt.Sprintf("student %q references unknown group %q", row.RegNo, row.GroupName))
			continue
		}
		input.Students = append(input.Students, model.Student{Id: row.Id, Name: row.Name, RegNo: row.RegNo, Group: group})
	}

	for line, row := range enrollments {
		student, studentFound := studentIds[row.RegNo]
		course, courseFound := courseIds[row.CourseName]
		if !studentFound {
			problems = append(problems, fmt.Sprintf("enrollment %d references unknown student %q", line+1, row.RegNo))
		}
		if !courseFound {
			problems = append(problems, fmt.Sprintf("enrollment %d references unknown course %q", line+1, row.CourseName))
		}
		if studentFound && courseFound {
			input.Enrollments = append(input.Enrollments, model.Enrollment{Student: student, Course: course})
		}
	}

	if len(problems) > 0 {
		return model.RawModelInput{}, &ImportError{Problems: problems}
	}
	return input, nil
}

func readRows(path string, rows any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, rows); err != nil {
		return fmt.Errorf("cannot parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func indexByName[T any](kind string, rows []T, key func(T) (string, uint64)) (map[string]uint64, []string) {
	index := make(map[string]uint64, len(rows))
	duplicates := make([]string, 0)
	for _, row := range rows {
		name, id := key(row)
		if _, ok := index[name]; ok {
			duplicates = append(duplicates, fmt.Sprintf("%s %q is ambiguous", kind, name))
			continue
		}
		index[name] = id
	}
	return index, duplicates
}
