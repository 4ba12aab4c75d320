package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/handler"
	"github.com/prepnexus/prepnexus-api/internal/service"
)

type mockResumeService struct {
	analysis     dto.ResumeAnalysisResponse
	linkedin     dto.LinkedInAnalysisResponse
	err          error
	lastUsername string
	lastTrack    string
	lastFileName string
	lastData     []byte
}

func (m *mockResumeService) Analyze(_ context.Context, username, track, fileName string, data []byte) (dto.ResumeAnalysisResponse, error) {
	m.lastUsername = username
	m.lastTrack = track
	m.lastFileName = fileName
	m.lastData = data
	return m.analysis, m.err
}

func (m *mockResumeService) Get(_ context.Context, username string) (dto.ResumeAnalysisResponse, error) {
	m.lastUsername = username
	return m.analysis, m.err
}

func (m *mockResumeService) AnalyzeLinkedIn(context.Context, dto.LinkedInAnalyzeRequest) (dto.LinkedInAnalysisResponse, error) {
	return m.linkedin, m.err
}

func resumeApp(svc *mockResumeService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/resume", authAs("priya", "student"))
	handler.NewResumeHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func multipartResume(t *testing.T, fileName, track string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("track", track))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestResumeHandler_AnalyzeSuccess(t *testing.T) {
	svc := &mockResumeService{analysis: dto.ResumeAnalysisResponse{
		FileName:     "resume.txt",
		Track:        "Programming & DSA",
		OverallScore: 72,
		SkillsFound:  []string{"java", "dynamic programming"},
	}}
	app := resumeApp(svc)

	resp, err := app.Test(multipartResume(t, "resume.txt", "Programming & DSA", []byte("Java developer with LeetCode practice")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.ResumeAnalysisResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 72, response.Data.OverallScore)
	require.Equal(t, "priya", svc.lastUsername)
	require.Equal(t, "Programming & DSA", svc.lastTrack)
	require.Equal(t, "resume.txt", svc.lastFileName)
	require.NotEmpty(t, svc.lastData)
}

func TestResumeHandler_AnalyzeMissingFile(t *testing.T) {
	app := resumeApp(&mockResumeService{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("track", "Programming & DSA"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResumeHandler_AnalyzeUnsupportedType(t *testing.T) {
	app := resumeApp(&mockResumeService{err: service.ErrUnsupportedFileType})

	resp, err := app.Test(multipartResume(t, "resume.png", "Programming & DSA", []byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestResumeHandler_GetNotFound(t *testing.T) {
	app := resumeApp(&mockResumeService{err: service.ErrResumeNotFound})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/resume", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResumeHandler_LinkedIn(t *testing.T) {
	svc := &mockResumeService{linkedin: dto.LinkedInAnalysisResponse{
		OverallScore:  64,
		MatchedSkills: []string{"python"},
	}}
	app := resumeApp(svc)

	resp := postJSON(t, app, "/api/v1/resume/linkedin", dto.LinkedInAnalyzeRequest{
		ProfileText: "Data science student with pandas and scikit-learn experience.",
		Track:       "Data Science & ML",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.LinkedInAnalysisResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 64, response.Data.OverallScore)
}
