package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/internal/apperrors"
	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/export"
	"github.com/limaJavier/coursetabling/internal/metrics"
	"github.com/limaJavier/coursetabling/internal/service"
	"github.com/limaJavier/coursetabling/pkg/model"
)

const instanceBody = `{
	"courses": [{"id": 1, "name": "Algebra"}, {"id": 2, "name": "Physics"}],
	"teachers": [{"id": 1, "name": "Ada"}],
	"rooms": [{"id": 1, "name": "Lab", "capacity": 30}],
	"groups": [{"id": 1, "name": "G1", "size": 1}],
	"students": [{"id": 1, "name": "Ann", "reg_no": "R1", "group_id": 1, "course_ids": [1, 2]}],
	"slots": [{"id": 1, "day": 0, "period": 0, "label": "Mon 8:00"}, {"id": 2, "day": 0, "period": 1}]
}`

type timetableServiceMock struct {
	captured model.RawModelInput
	solution *service.Solution
	err      error
	title    string
}

func (m *timetableServiceMock) Solve(ctx context.Context, raw model.RawModelInput) (*service.Solution, error) {
	m.captured = raw
	return m.solution, m.err
}

func (m *timetableServiceMock) Render(entries []model.ScheduleEntry, title string) ([]byte, error) {
	m.title = title
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.3"), nil
}

func performRequest(handlerFunc gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	handlerFunc(c)
	return w
}

func TestGenerateSuccess(t *testing.T) {
	mockSvc := &timetableServiceMock{solution: &service.Solution{SolveID: "solve-1", Result: model.Result{Status: model.StatusSolved}}}
	handler := NewTimetableHandler(mockSvc)

	w := performRequest(handler.Generate, instanceBody)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.captured.Courses, 2)
	assert.Equal(t, "R1", mockSvc.captured.Students[0].RegNo)
	assert.Equal(t, []uint64{1, 2}, mockSvc.captured.Students[0].Courses)
	assert.Contains(t, w.Body.String(), `"solve_id":"solve-1"`)
}

func TestGenerateMalformedBody(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := performRequest(handler.Generate, `{"courses":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.ErrValidation.Code)
}

func TestGenerateFailures(t *testing.T) {
	scenarios := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Infeasible", apperrors.ErrInfeasible, http.StatusUnprocessableEntity, "INFEASIBLE"},
		{"Deadline exceeded", apperrors.ErrDeadlineExceeded, http.StatusServiceUnavailable, "DEADLINE_EXCEEDED"},
		{"Validation", apperrors.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			mockSvc := &timetableServiceMock{
				solution: &service.Solution{SolveID: "solve-2", Result: model.Result{Status: model.StatusInfeasible}},
				err:      scenario.err,
			}

			w := performRequest(NewTimetableHandler(mockSvc).Generate, instanceBody)

			require.Equal(t, scenario.status, w.Code)
			var envelope struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
				Meta map[string]any `json:"meta"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, scenario.code, envelope.Error.Code)
			assert.Equal(t, "solve-2", envelope.Meta["solve_id"])
		})
	}
}

func TestRenderPDF(t *testing.T) {
	t.Run("Default title", func(t *testing.T) {
		mockSvc := &timetableServiceMock{}

		w := performRequest(NewTimetableHandler(mockSvc).RenderPDF, `{"entries": [{"course_name": "Algebra", "teacher_name": "Ada", "room_name": "Lab", "slot": "Mon"}]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable.pdf")
		assert.Equal(t, defaultPDFTitle, mockSvc.title)
	})

	t.Run("Missing entries", func(t *testing.T) {
		w := performRequest(NewTimetableHandler(&timetableServiceMock{}).RenderPDF, `{"title": "x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter(t *testing.T) {
	//** Arrange
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1", Solver: config.SolverConfig{Strategy: config.StrategyEmbedded}}
	metricsSvc := metrics.NewService()
	svc, err := service.NewSchedulerService(cfg.Solver, metricsSvc, export.NewPDFRenderer(), nil, zap.NewNop())
	require.NoError(t, err)
	router := NewRouter(cfg, zap.NewNop(), metricsSvc, svc)

	//** Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(instanceBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	//** Assert
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data service.Solution `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, model.StatusSolved, envelope.Data.Result.Status)
	require.Len(t, envelope.Data.Schedule, 2)
	assert.NotEqual(t, envelope.Data.Result.Assignments[0].Slot, envelope.Data.Result.Assignments[1].Slot)

	// The rendered schedule round-trips into the pdf endpoint
	payload, err := json.Marshal(gin.H{"title": "Semester", "entries": envelope.Data.Schedule})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/timetables/pdf", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `timetabler_solves_total{status="solved",strategy="embedded"} 1`)
	assert.Contains(t, w.Body.String(), `path="/api/v1/timetables"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
