package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/handler"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

type mockAssessmentService struct {
	startResponse  dto.GenerateAssessmentResponse
	startErr       error
	submitResponse dto.SubmitAssessmentResponse
	submitErr      error
	latestResponse dto.AssessmentResultView
	latestErr      error
	lastUsername   string
}

func (m *mockAssessmentService) Tracks() []string {
	return []string{"Programming & DSA", "Data Science & ML"}
}

func (m *mockAssessmentService) Start(_ context.Context, username, _ string) (dto.GenerateAssessmentResponse, error) {
	m.lastUsername = username
	return m.startResponse, m.startErr
}

func (m *mockAssessmentService) Submit(_ context.Context, username string, _ dto.SubmitAssessmentRequest) (dto.SubmitAssessmentResponse, error) {
	m.lastUsername = username
	return m.submitResponse, m.submitErr
}

func (m *mockAssessmentService) Latest(context.Context, string) (dto.AssessmentResultView, error) {
	return m.latestResponse, m.latestErr
}

func (m *mockAssessmentService) History(context.Context, string) ([]dto.AssessmentResultView, error) {
	return []dto.AssessmentResultView{m.latestResponse}, m.latestErr
}

func assessmentApp(svc *mockAssessmentService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/assessments", authAs("priya", "student"))
	handler.NewAssessmentHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAssessmentHandler_Tracks(t *testing.T) {
	app := assessmentApp(&mockAssessmentService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/assessments/tracks", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Contains(t, response.Data, "Programming & DSA")
}

func TestAssessmentHandler_StartSuccess(t *testing.T) {
	svc := &mockAssessmentService{
		startResponse: dto.GenerateAssessmentResponse{
			AttemptID: "attempt-1",
			Track:     "Programming & DSA",
			Questions: []dto.QuestionView{{ID: "q-1", Question: "What is a heap?"}},
		},
	}
	app := assessmentApp(svc)

	resp := postJSON(t, app, "/api/v1/assessments/start", dto.GenerateAssessmentRequest{Track: "Programming & DSA"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.GenerateAssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "attempt-1", response.Data.AttemptID)
	require.Equal(t, "priya", svc.lastUsername)
}

func TestAssessmentHandler_StartErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "invalid track", err: service.ErrInvalidTrack, statusCode: fiber.StatusBadRequest},
		{name: "rate limited", err: ai.ErrRateLimited, statusCode: fiber.StatusTooManyRequests},
		{name: "quota exhausted", err: ai.ErrQuotaExhausted, statusCode: fiber.StatusPaymentRequired},
		{name: "unparseable output", err: ai.ErrParse, statusCode: fiber.StatusBadGateway},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := assessmentApp(&mockAssessmentService{startErr: tc.err})
			resp := postJSON(t, app, "/api/v1/assessments/start", dto.GenerateAssessmentRequest{Track: "Programming & DSA"})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestAssessmentHandler_SubmitErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "unknown attempt", err: service.ErrAttemptNotFound, statusCode: fiber.StatusNotFound},
		{name: "missing answers", err: service.ErrIncompleteSubmission, statusCode: fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := assessmentApp(&mockAssessmentService{submitErr: tc.err})
			resp := postJSON(t, app, "/api/v1/assessments/submit", dto.SubmitAssessmentRequest{AttemptID: "attempt-1"})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestAssessmentHandler_SubmitSuccess(t *testing.T) {
	svc := &mockAssessmentService{
		submitResponse: dto.SubmitAssessmentResponse{
			Track:          "Programming & DSA",
			CorrectAnswers: 4,
			TotalQuestions: 5,
			Level:          "Ready",
			Saved:          true,
		},
	}
	app := assessmentApp(svc)

	resp := postJSON(t, app, "/api/v1/assessments/submit", dto.SubmitAssessmentRequest{AttemptID: "attempt-1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.SubmitAssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "Ready", response.Data.Level)
	require.True(t, response.Data.Saved)
}

func TestAssessmentHandler_LatestNotFound(t *testing.T) {
	app := assessmentApp(&mockAssessmentService{latestErr: service.ErrResultNotFound})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/assessments/latest", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
