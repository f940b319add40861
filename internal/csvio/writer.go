package csvio

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetabling/pkg/model"
)

// ScheduleRow is one line of an exported schedule
type ScheduleRow struct {
	Course  string `csv:"course"`
	Teacher string `csv:"teacher"`
	Room    string `csv:"room"`
	Day     uint64 `csv:"day"`
	Period  uint64 `csv:"period"`
	Slot    string `csv:"slot"`
}

func scheduleRows(entries []model.ScheduleEntry) []*ScheduleRow {
	return lo.Map(entries, func(entry model.ScheduleEntry, _ int) *ScheduleRow {
		return &ScheduleRow{
			Course:  entry.CourseName,
			Teacher: entry.TeacherName,
			Room:    entry.RoomName,
			Day:     entry.Day,
			Period:  entry.Period,
			Slot:    entry.SlotLabel,
		}
	})
}

// ExportSchedule writes the schedule entries, in the given order, as CSV
func ExportSchedule(w io.Writer, entries []model.ScheduleEntry) error {
	rows := scheduleRows(entries)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("cannot write schedule csv: %w", err)
	}
	return nil
}

func ExportScheduleString(entries []model.ScheduleEntry) (string, error) {
	rows := scheduleRows(entries)
	str, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("cannot write schedule csv: %w", err)
	}
	return str, nil
}
