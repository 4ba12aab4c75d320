package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
)

// ErrRoundNotFound means the placement round does not exist.
var ErrRoundNotFound = errors.New("placement round not found")

// Batch upload lifecycle statuses.
const (
	batchStatusCompleted = "completed"
	batchStatusPartial   = "completed_with_errors"
)

// PlacementService manages placement rounds, shortlists and batch student
// imports for TPO staff.
type PlacementService interface {
	CreateRound(ctx context.Context, createdBy string, req dto.CreateRoundRequest) (dto.RoundResponse, error)
	ListRounds(ctx context.Context) ([]dto.RoundResponse, error)
	UpdateRoundStatus(ctx context.Context, roundID uint, req dto.UpdateRoundStatusRequest) error
	Shortlist(ctx context.Context, tpoUsername string, roundID uint, req dto.ShortlistRequest) ([]dto.ShortlistEntryResponse, error)
	ListShortlist(ctx context.Context, roundID uint) ([]dto.ShortlistEntryResponse, error)
	StudentShortlists(ctx context.Context, username string) ([]dto.ShortlistEntryResponse, error)
	BatchImport(ctx context.Context, uploadedBy string, req dto.BatchImportRequest) (dto.BatchUploadResponse, error)
}

type placementService struct {
	placements repository.PlacementRepository
	students   repository.StudentRepository
	messages   MessageService
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewPlacementService constructs a placement service. Messages may be nil;
// shortlist notifications are then skipped.
func NewPlacementService(placements repository.PlacementRepository, students repository.StudentRepository, messages MessageService, validate *validator.Validate, logger zerolog.Logger) PlacementService {
	return &placementService{
		placements: placements,
		students:   students,
		messages:   messages,
		validate:   validate,
		logger:     logger.With().Str("component", "placement_service").Logger(),
	}
}

func (s *placementService) CreateRound(ctx context.Context, createdBy string, req dto.CreateRoundRequest) (dto.RoundResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.RoundResponse{}, err
	}

	round := models.PlacementRound{
		CompanyName:  req.CompanyName,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		RoundDate:    req.RoundDate,
		Status:       "upcoming",
		CreatedBy:    createdBy,
	}
	if err := s.placements.CreateRound(ctx, &round); err != nil {
		return dto.RoundResponse{}, fmt.Errorf("create round: %w", err)
	}

	s.logger.Info().Str("company", round.CompanyName).Uint("round_id", round.ID).Msg("placement round created")
	return dto.NewRoundResponse(round), nil
}

func (s *placementService) ListRounds(ctx context.Context) ([]dto.RoundResponse, error) {
	rounds, err := s.placements.ListRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return dto.NewRoundResponses(rounds), nil
}

func (s *placementService) UpdateRoundStatus(ctx context.Context, roundID uint, req dto.UpdateRoundStatusRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	if err := s.placements.UpdateRoundStatus(ctx, roundID, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("update round status: %w", err)
	}
	return nil
}

// Shortlist records the entries, then notifies each student with a direct
// message. Notification failures are recorded per entry, never fatal.
func (s *placementService) Shortlist(ctx context.Context, tpoUsername string, roundID uint, req dto.ShortlistRequest) ([]dto.ShortlistEntryResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	round, err := s.placements.GetRound(ctx, roundID)
	if err != nil {
		return nil, ErrRoundNotFound
	}

	entries := make([]models.ShortlistedStudent, 0, len(req.Usernames))
	for _, username := range req.Usernames {
		entries = append(entries, models.ShortlistedStudent{
			RoundID:         round.ID,
			StudentUsername: username,
		})
	}
	if err := s.placements.AddShortlist(ctx, entries); err != nil {
		return nil, fmt.Errorf("add shortlist: %w", err)
	}

	for i := range entries {
		status := s.notifyShortlisted(ctx, tpoUsername, round, entries[i].StudentUsername)
		if err := s.placements.MarkNotified(ctx, entries[i].ID, status); err != nil {
			s.logger.Warn().Err(err).Uint("entry_id", entries[i].ID).Msg("failed to record notification status")
		}
		entries[i].NotificationSent = true
		entries[i].NotificationStatus = status
	}

	return dto.NewShortlistEntryResponses(entries), nil
}

func (s *placementService) notifyShortlisted(ctx context.Context, tpoUsername string, round models.PlacementRound, student string) string {
	if s.messages == nil {
		return "skipped"
	}

	content := fmt.Sprintf("You have been shortlisted for the %s placement round on %s. Check the placement portal for details.",
		round.CompanyName, round.RoundDate.Format("02 Jan 2006"))
	_, err := s.messages.Send(ctx, tpoUsername, "tpo", dto.SendMessageRequest{
		Recipient: student,
		Content:   content,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("student", student).Msg("shortlist notification failed")
		return "failed"
	}
	return "sent"
}

func (s *placementService) ListShortlist(ctx context.Context, roundID uint) ([]dto.ShortlistEntryResponse, error) {
	if _, err := s.placements.GetRound(ctx, roundID); err != nil {
		return nil, ErrRoundNotFound
	}

	entries, err := s.placements.ListShortlist(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list shortlist: %w", err)
	}
	return dto.NewShortlistEntryResponses(entries), nil
}

func (s *placementService) StudentShortlists(ctx context.Context, username string) ([]dto.ShortlistEntryResponse, error) {
	entries, err := s.placements.ListShortlistsForStudent(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list student shortlists: %w", err)
	}
	return dto.NewShortlistEntryResponses(entries), nil
}

// BatchImport upserts each student row independently, recording failures
// instead of aborting, and persists the upload summary.
func (s *placementService) BatchImport(ctx context.Context, uploadedBy string, req dto.BatchImportRequest) (dto.BatchUploadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.BatchUploadResponse{}, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "inline-import"
	}

	upload := models.BatchUpload{
		FileName:     fileName,
		UploadedBy:   uploadedBy,
		TotalRecords: len(req.Students),
		Status:       "processing",
	}
	if err := s.placements.CreateBatchUpload(ctx, &upload); err != nil {
		return dto.BatchUploadResponse{}, fmt.Errorf("create batch upload: %w", err)
	}

	var importErrors []string
	for _, record := range req.Students {
		student := models.Student{
			Username:     record.Username,
			Email:        record.Email,
			Department:   record.Department,
			Year:         record.Year,
			IsRegistered: true,
		}
		if _, err := s.students.Upsert(ctx, student); err != nil {
			upload.FailedCount++
			importErrors = append(importErrors, fmt.Sprintf("%s: %v", record.Username, err))
			continue
		}
		upload.ProcessedCount++
	}

	upload.Status = batchStatusCompleted
	if upload.FailedCount > 0 {
		upload.Status = batchStatusPartial
		if encoded, err := json.Marshal(importErrors); err == nil {
			upload.ErrorDetails = datatypes.JSON(encoded)
		}
	}
	if err := s.placements.UpdateBatchUpload(ctx, &upload); err != nil {
		s.logger.Warn().Err(err).Uint("upload_id", upload.ID).Msg("failed to finalize batch upload record")
	}

	return dto.BatchUploadResponse{
		ID:             upload.ID,
		FileName:       upload.FileName,
		TotalRecords:   upload.TotalRecords,
		ProcessedCount: upload.ProcessedCount,
		FailedCount:    upload.FailedCount,
		Status:         upload.Status,
		Errors:         importErrors,
	}, nil
}
