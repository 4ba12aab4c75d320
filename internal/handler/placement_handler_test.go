package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/handler"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/service"
)

type mockPlacementService struct {
	round        dto.RoundResponse
	rounds       []dto.RoundResponse
	entries      []dto.ShortlistEntryResponse
	batchResult  dto.BatchUploadResponse
	err          error
	lastUsername string
}

func (m *mockPlacementService) CreateRound(_ context.Context, createdBy string, _ dto.CreateRoundRequest) (dto.RoundResponse, error) {
	m.lastUsername = createdBy
	return m.round, m.err
}

func (m *mockPlacementService) ListRounds(context.Context) ([]dto.RoundResponse, error) {
	return m.rounds, m.err
}

func (m *mockPlacementService) UpdateRoundStatus(context.Context, uint, dto.UpdateRoundStatusRequest) error {
	return m.err
}

func (m *mockPlacementService) Shortlist(_ context.Context, tpoUsername string, _ uint, _ dto.ShortlistRequest) ([]dto.ShortlistEntryResponse, error) {
	m.lastUsername = tpoUsername
	return m.entries, m.err
}

func (m *mockPlacementService) ListShortlist(context.Context, uint) ([]dto.ShortlistEntryResponse, error) {
	return m.entries, m.err
}

func (m *mockPlacementService) StudentShortlists(_ context.Context, username string) ([]dto.ShortlistEntryResponse, error) {
	m.lastUsername = username
	return m.entries, m.err
}

func (m *mockPlacementService) BatchImport(context.Context, string, dto.BatchImportRequest) (dto.BatchUploadResponse, error) {
	return m.batchResult, m.err
}

func placementApp(svc *mockPlacementService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/placements", authAs("tpo_admin", role))
	h := handler.NewPlacementHandler(svc, zerolog.New(io.Discard))
	h.RegisterShared(group)

	tpo := group.Group("", middleware.RequireRole(middleware.RoleTPO))
	h.RegisterTPO(tpo)
	return app
}

func TestPlacementHandler_CreateRound(t *testing.T) {
	svc := &mockPlacementService{round: dto.RoundResponse{ID: 1, CompanyName: "Acme Corp", Status: "upcoming"}}
	app := placementApp(svc, "tpo")

	resp := postJSON(t, app, "/api/v1/placements/rounds", dto.CreateRoundRequest{
		CompanyName: "Acme Corp",
		RoundDate:   time.Date(2026, 9, 18, 10, 0, 0, 0, time.UTC),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "tpo_admin", svc.lastUsername)
}

func TestPlacementHandler_CreateRoundForbiddenForStudents(t *testing.T) {
	app := placementApp(&mockPlacementService{}, "student")

	resp := postJSON(t, app, "/api/v1/placements/rounds", dto.CreateRoundRequest{
		CompanyName: "Acme Corp",
		RoundDate:   time.Now(),
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPlacementHandler_ListRoundsSharedWithStudents(t *testing.T) {
	svc := &mockPlacementService{rounds: []dto.RoundResponse{{ID: 1, CompanyName: "Acme Corp"}}}
	app := placementApp(svc, "student")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/placements/rounds", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.RoundResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)
}

func TestPlacementHandler_ShortlistUnknownRound(t *testing.T) {
	app := placementApp(&mockPlacementService{err: service.ErrRoundNotFound}, "tpo")

	resp := postJSON(t, app, "/api/v1/placements/rounds/42/shortlist", dto.ShortlistRequest{Usernames: []string{"priya"}})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPlacementHandler_BatchImport(t *testing.T) {
	svc := &mockPlacementService{batchResult: dto.BatchUploadResponse{
		ID:             1,
		TotalRecords:   2,
		ProcessedCount: 2,
		Status:         "completed",
	}}
	app := placementApp(svc, "tpo")

	resp := postJSON(t, app, "/api/v1/placements/students/import", dto.BatchImportRequest{
		Students: []dto.BatchStudent{{Username: "priya"}, {Username: "rahul"}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.BatchUploadResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 2, response.Data.ProcessedCount)
}
