package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/coursetabling/pkg/model"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	t.Run("Unknown errors are internal", func(t *testing.T) {
		plain := errors.New("boom")
		normalised := FromError(plain)
		assert.Equal(t, ErrInternal.Code, normalised.Code)
		assert.Equal(t, http.StatusInternalServerError, normalised.Status)
		assert.ErrorIs(t, normalised, plain)
	})

	t.Run("Application errors pass through", func(t *testing.T) {
		wrapped := Wrap(errors.New("boom"), ErrValidation, "bad input")
		assert.Same(t, wrapped, FromError(fmt.Errorf("handler: %w", wrapped)))
		assert.Equal(t, "bad input: boom", wrapped.Error())
	})

	t.Run("Engine errors keep their meaning", func(t *testing.T) {
		cases := []struct {
			err  error
			code string
		}{
			{model.ErrInfeasible, ErrInfeasible.Code},
			{model.ErrDeadlineExceeded, ErrDeadlineExceeded.Code},
			{fmt.Errorf("solve: %w", context.DeadlineExceeded), ErrDeadlineExceeded.Code},
			{&model.ValidationError{Problems: []string{"course 1: field Name violates \"required\""}}, ErrValidation.Code},
		}
		for _, c := range cases {
			assert.Equal(t, c.code, FromError(c.err).Code, c.err.Error())
		}
	})
}

func TestFromValidation(t *testing.T) {
	problems := []string{"duplicate course id 1", "student 4: unknown group 9"}

	appErr := FromValidation(fmt.Errorf("load: %w", &model.ValidationError{Problems: problems}))

	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, problems, appErr.Details)
	assert.Nil(t, FromValidation(errors.New("not json")).Details)
}

func TestFromResult(t *testing.T) {
	stats := model.Stats{Strategy: model.StrategyEmbedded, Steps: 42, Backtracks: 41}

	assert.Nil(t, FromResult(model.Result{Status: model.StatusSolved, Stats: stats}))

	infeasible := FromResult(model.Result{Status: model.StatusInfeasible, Stats: stats})
	require.NotNil(t, infeasible)
	assert.Equal(t, ErrInfeasible.Code, infeasible.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, infeasible.Status)
	assert.Equal(t, stats, infeasible.Details)
	assert.ErrorIs(t, infeasible, model.ErrInfeasible)

	timedOut := FromResult(model.Result{Status: model.StatusDeadlineExceeded, Stats: stats})
	require.NotNil(t, timedOut)
	assert.Equal(t, ErrDeadlineExceeded.Code, timedOut.Code)
	assert.Equal(t, http.StatusServiceUnavailable, timedOut.Status)
	assert.ErrorIs(t, timedOut, model.ErrDeadlineExceeded)
	assert.Nil(t, ErrDeadlineExceeded.Details)
}

func TestWithMessage(t *testing.T) {
	clone := ErrInfeasible.WithMessage("course 3 cannot be placed")

	assert.Equal(t, ErrInfeasible.Code, clone.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, clone.Status)
	assert.Equal(t, "course 3 cannot be placed", clone.Message)
	assert.NotEqual(t, ErrInfeasible.Message, clone.Message)

	var missing *Error
	assert.Nil(t, missing.WithMessage("x"))
}
