package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports every problem found while building a ModelInput
type ValidationError struct {
	Problems []string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid model input: %s", strings.Join(err.Problems, "; "))
}

func validateRecords(rawInput RawModelInput) []string {
	validate := validator.New()
	problems := make([]string, 0)

	check := func(entity string, id uint64, record any) {
		err := validate.Struct(record)
		if err == nil {
			return
		}
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			problems = append(problems, fmt.Sprintf("%s %d: %v", entity, id, err))
			return
		}
		for _, fieldError := range fieldErrors {
			problems = append(problems, fmt.Sprintf("%s %d: field %s violates %q", entity, id, fieldError.Field(), describeTag(fieldError)))
		}
	}

	for _, course := range rawInput.Courses {
		check("course", course.Id, course)
	}
	for _, teacher := range rawInput.Teachers {
		check("teacher", teacher.Id, teacher)
	}
	for _, room := range rawInput.Rooms {
		check("room", room.Id, room)
	}
	for _, group := range rawInput.Groups {
		check("group", group.Id, group)
	}
	for _, student := range rawInput.Students {
		check("student", student.Id, student)
	}

	return problems
}

func describeTag(fieldError validator.FieldError) string {
	if fieldError.Param() == "" {
		return fieldError.Tag()
	}
	return fieldError.Tag() + "=" + fieldError.Param()
}
