package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
)

type stubPlacementRepo struct {
	rounds     []models.PlacementRound
	shortlists []models.ShortlistedStudent
	uploads    []models.BatchUpload
}

func (r *stubPlacementRepo) CreateRound(_ context.Context, round *models.PlacementRound) error {
	round.ID = uint(len(r.rounds) + 1)
	round.CreatedAt = time.Now()
	r.rounds = append(r.rounds, *round)
	return nil
}

func (r *stubPlacementRepo) ListRounds(context.Context) ([]models.PlacementRound, error) {
	return r.rounds, nil
}

func (r *stubPlacementRepo) GetRound(_ context.Context, id uint) (models.PlacementRound, error) {
	for _, round := range r.rounds {
		if round.ID == id {
			return round, nil
		}
	}
	return models.PlacementRound{}, gorm.ErrRecordNotFound
}

func (r *stubPlacementRepo) UpdateRoundStatus(_ context.Context, id uint, status string) error {
	for i, round := range r.rounds {
		if round.ID == id {
			r.rounds[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPlacementRepo) AddShortlist(_ context.Context, entries []models.ShortlistedStudent) error {
	for i := range entries {
		entries[i].ID = uint(len(r.shortlists) + i + 1)
	}
	r.shortlists = append(r.shortlists, entries...)
	return nil
}

func (r *stubPlacementRepo) ListShortlist(_ context.Context, roundID uint) ([]models.ShortlistedStudent, error) {
	var out []models.ShortlistedStudent
	for _, entry := range r.shortlists {
		if entry.RoundID == roundID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *stubPlacementRepo) ListShortlistsForStudent(_ context.Context, username string) ([]models.ShortlistedStudent, error) {
	var out []models.ShortlistedStudent
	for _, entry := range r.shortlists {
		if entry.StudentUsername == username {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *stubPlacementRepo) MarkNotified(_ context.Context, entryID uint, status string) error {
	for i, entry := range r.shortlists {
		if entry.ID == entryID {
			now := time.Now()
			r.shortlists[i].NotificationSent = true
			r.shortlists[i].NotificationStatus = status
			r.shortlists[i].SentAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPlacementRepo) CreateBatchUpload(_ context.Context, upload *models.BatchUpload) error {
	upload.ID = uint(len(r.uploads) + 1)
	r.uploads = append(r.uploads, *upload)
	return nil
}

func (r *stubPlacementRepo) UpdateBatchUpload(_ context.Context, upload *models.BatchUpload) error {
	for i, existing := range r.uploads {
		if existing.ID == upload.ID {
			r.uploads[i] = *upload
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPlacementRepo) GetBatchUpload(_ context.Context, id uint) (models.BatchUpload, error) {
	for _, upload := range r.uploads {
		if upload.ID == id {
			return upload, nil
		}
	}
	return models.BatchUpload{}, gorm.ErrRecordNotFound
}

type stubMessenger struct {
	sent []dto.SendMessageRequest
	fail bool
}

func (s *stubMessenger) Send(_ context.Context, _, _ string, req dto.SendMessageRequest) (dto.MessageResponse, error) {
	if s.fail {
		return dto.MessageResponse{}, errors.New("hub unavailable")
	}
	s.sent = append(s.sent, req)
	return dto.MessageResponse{Recipient: req.Recipient, Content: req.Content}, nil
}

func (s *stubMessenger) Conversation(context.Context, string, string, int) ([]dto.MessageResponse, error) {
	return nil, nil
}

func (s *stubMessenger) MarkRead(context.Context, string, string) error { return nil }

func (s *stubMessenger) UnreadCount(context.Context, string) (int64, error) { return 0, nil }

func (s *stubMessenger) ServeConnection(*websocket.Conn, MessageConnectionOptions) {}

func (s *stubMessenger) Start(context.Context) {}

func placementFixture(messenger *stubMessenger) (*stubPlacementRepo, *stubStudentRepo, PlacementService) {
	repo := &stubPlacementRepo{}
	students := newStubStudentRepo()
	svc := NewPlacementService(repo, students, messenger, validator.New(), zerolog.Nop())
	return repo, students, svc
}

func acmeRound() dto.CreateRoundRequest {
	return dto.CreateRoundRequest{
		CompanyName: "Acme Corp",
		Description: "SDE-1 hiring",
		Location:    "Bengaluru",
		RoundDate:   time.Date(2026, 9, 18, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndListRounds(t *testing.T) {
	_, _, svc := placementFixture(&stubMessenger{})

	created, err := svc.CreateRound(context.Background(), "tpo_admin", acmeRound())
	require.NoError(t, err)
	require.Equal(t, "upcoming", created.Status)
	require.Equal(t, "tpo_admin", created.CreatedBy)

	rounds, err := svc.ListRounds(context.Background())
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	require.Equal(t, "Acme Corp", rounds[0].CompanyName)
}

func TestUpdateRoundStatus(t *testing.T) {
	_, _, svc := placementFixture(&stubMessenger{})
	created, err := svc.CreateRound(context.Background(), "tpo_admin", acmeRound())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRoundStatus(context.Background(), created.ID, dto.UpdateRoundStatusRequest{Status: "ongoing"}))

	err = svc.UpdateRoundStatus(context.Background(), 999, dto.UpdateRoundStatusRequest{Status: "completed"})
	require.ErrorIs(t, err, ErrRoundNotFound)
}

func TestShortlistNotifiesEachStudent(t *testing.T) {
	messenger := &stubMessenger{}
	repo, _, svc := placementFixture(messenger)
	created, err := svc.CreateRound(context.Background(), "tpo_admin", acmeRound())
	require.NoError(t, err)

	entries, err := svc.Shortlist(context.Background(), "tpo_admin", created.ID, dto.ShortlistRequest{
		Usernames: []string{"priya", "rahul"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Len(t, messenger.sent, 2)
	require.Equal(t, "priya", messenger.sent[0].Recipient)
	require.Contains(t, messenger.sent[0].Content, "Acme Corp")

	for _, entry := range entries {
		require.True(t, entry.NotificationSent)
		require.Equal(t, "sent", entry.NotificationStatus)
	}
	require.Equal(t, "sent", repo.shortlists[0].NotificationStatus)
}

func TestShortlistRecordsNotificationFailure(t *testing.T) {
	_, _, svc := placementFixture(&stubMessenger{fail: true})
	created, err := svc.CreateRound(context.Background(), "tpo_admin", acmeRound())
	require.NoError(t, err)

	entries, err := svc.Shortlist(context.Background(), "tpo_admin", created.ID, dto.ShortlistRequest{
		Usernames: []string{"priya"},
	})
	require.NoError(t, err)
	require.Equal(t, "failed", entries[0].NotificationStatus)
}

func TestShortlistUnknownRound(t *testing.T) {
	_, _, svc := placementFixture(&stubMessenger{})

	_, err := svc.Shortlist(context.Background(), "tpo_admin", 42, dto.ShortlistRequest{Usernames: []string{"priya"}})
	require.ErrorIs(t, err, ErrRoundNotFound)
}

type flakyStudentRepo struct {
	*stubStudentRepo
	failFor string
}

func (r *flakyStudentRepo) Upsert(ctx context.Context, student models.Student) (models.Student, error) {
	if student.Username == r.failFor {
		return models.Student{}, errors.New("duplicate email")
	}
	return r.stubStudentRepo.Upsert(ctx, student)
}

func TestBatchImportRecordsFailures(t *testing.T) {
	repo := &stubPlacementRepo{}
	students := &flakyStudentRepo{stubStudentRepo: newStubStudentRepo(), failFor: "broken"}
	svc := NewPlacementService(repo, students, &stubMessenger{}, validator.New(), zerolog.Nop())

	result, err := svc.BatchImport(context.Background(), "tpo_admin", dto.BatchImportRequest{
		FileName: "students.csv",
		Students: []dto.BatchStudent{
			{Username: "priya", Email: "priya@example.edu"},
			{Username: "broken"},
			{Username: "rahul"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalRecords)
	require.Equal(t, 2, result.ProcessedCount)
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, "completed_with_errors", result.Status)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "broken")

	stored, err := repo.GetBatchUpload(context.Background(), result.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ErrorDetails)
	require.True(t, students.students["priya"].IsRegistered)
}

func TestBatchImportAllSucceed(t *testing.T) {
	repo := &stubPlacementRepo{}
	svc := NewPlacementService(repo, newStubStudentRepo(), &stubMessenger{}, validator.New(), zerolog.Nop())

	result, err := svc.BatchImport(context.Background(), "tpo_admin", dto.BatchImportRequest{
		Students: []dto.BatchStudent{{Username: "priya"}, {Username: "rahul"}},
	})
	require.NoError(t, err)
	require.Equal(t, "completed", result.Status)
	require.Equal(t, "inline-import", result.FileName)
	require.Empty(t, result.Errors)
}
