package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/courtlog/internal/domain"
)

// issueRepository is the subset of store.IssueStore that IssueService requires.
type issueRepository interface {
	LoadAll(ctx context.Context) ([]domain.Issue, error)
	SaveAll(ctx context.Context, issues []domain.Issue) error
}

// photoStorage is the subset of photostore.PhotoStore that IssueService requires.
type photoStorage interface {
	Store(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// PhotoUpload is a raw photo payload attached to a create or update request.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// IssueService coordinates the repository and the photo store for the issue
// lifecycle. Photo store failures never block record persistence; repository
// failures always surface. Mutations are serialized because the repository
// contract is whole-set replace.
type IssueService struct {
	repo   issueRepository
	photos photoStorage
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

func NewIssueService(repo issueRepository, photos photoStorage, loc *time.Location, logger *slog.Logger) *IssueService {
	return &IssueService{
		repo:   repo,
		photos: photos,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

func (s *IssueService) List(ctx context.Context) ([]domain.Issue, error) {
	return s.repo.LoadAll(ctx)
}

// Get returns the issue with the given id, or ErrNotFound.
func (s *IssueService) Get(ctx context.Context, id string) (domain.Issue, error) {
	issues, err := s.repo.LoadAll(ctx)
	if err != nil {
		return domain.Issue{}, err
	}
	for _, issue := range issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return domain.Issue{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

// Create validates the fields, stores the photo if one is attached (failure
// degrades to a photo-less record), and appends a new issue to the set.
func (s *IssueService) Create(ctx context.Context, court, problem, reporter string, photo *PhotoUpload) (domain.Issue, error) {
	if err := validateFields(court, problem, reporter); err != nil {
		return domain.Issue{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	photoKey := s.storePhoto(ctx, "create", photo)

	issue := domain.Issue{
		ID:         uuid.NewString(),
		ReportedAt: s.timestamp(),
		Court:      court,
		Problem:    problem,
		PhotoKey:   photoKey,
		Reporter:   reporter,
	}

	issues, err := s.repo.LoadAll(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("failed to load issues: %w", err)
	}
	issues = append(issues, issue)

	if err := s.repo.SaveAll(ctx, issues); err != nil {
		s.cleanupPhoto(ctx, "create", photoKey)
		return domain.Issue{}, fmt.Errorf("failed to save issues: %w", err)
	}

	s.logger.Info("issue created", "id", issue.ID, "court", court, "has_photo", photoKey != nil)
	return issue, nil
}

// Update replaces the fields of an existing issue, keeping its id and
// refreshing its timestamp. A new photo is stored before the old one is
// deleted so a failed upload never loses the prior photo.
func (s *IssueService) Update(ctx context.Context, id, court, problem, reporter string, photo *PhotoUpload) (domain.Issue, error) {
	if err := validateFields(court, problem, reporter); err != nil {
		return domain.Issue{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := s.repo.LoadAll(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("failed to load issues: %w", err)
	}

	idx := indexOf(issues, id)
	if idx < 0 {
		return domain.Issue{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	oldKey := issues[idx].PhotoKey
	newKey := s.storePhoto(ctx, "update", photo)

	updated := issues[idx]
	updated.ReportedAt = s.timestamp()
	updated.Court = court
	updated.Problem = problem
	updated.Reporter = reporter
	if newKey != nil {
		updated.PhotoKey = newKey
	}
	issues[idx] = updated

	if err := s.repo.SaveAll(ctx, issues); err != nil {
		s.cleanupPhoto(ctx, "update", newKey)
		return domain.Issue{}, fmt.Errorf("failed to save issues: %w", err)
	}

	// The new photo is committed; now drop the replaced file.
	if newKey != nil && oldKey != nil {
		s.cleanupPhoto(ctx, "update", oldKey)
	}

	s.logger.Info("issue updated", "id", id, "court", court, "photo_replaced", newKey != nil)
	return updated, nil
}

// Delete removes the issue and, best-effort, its photo file. Photo cleanup
// failure is logged but not surfaced: the record removal is the primary
// contract and has already committed.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}

	idx := indexOf(issues, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	photoKey := issues[idx].PhotoKey
	issues = append(issues[:idx], issues[idx+1:]...)

	if err := s.repo.SaveAll(ctx, issues); err != nil {
		return fmt.Errorf("failed to save issues: %w", err)
	}

	s.cleanupPhoto(ctx, "delete", photoKey)

	s.logger.Info("issue deleted", "id", id)
	return nil
}

// storePhoto saves the payload and returns its key, or nil when no payload
// was attached or the store failed. Storage failure degrades the record to
// photo-less rather than aborting the operation.
func (s *IssueService) storePhoto(ctx context.Context, op string, photo *PhotoUpload) *string {
	if photo == nil {
		return nil
	}
	key, err := s.photos.Store(ctx, photo.Filename, bytes.NewReader(photo.Data))
	if err != nil {
		s.logger.Error("failed to store photo, continuing without one",
			"op", op, "filename", photo.Filename, "error", err)
		return nil
	}
	return &key
}

func (s *IssueService) cleanupPhoto(ctx context.Context, op string, key *string) {
	if key == nil {
		return
	}
	if err := s.photos.Delete(ctx, *key); err != nil {
		s.logger.Error("failed to delete photo file", "op", op, "key", *key, "error", err)
	}
}

func (s *IssueService) timestamp() time.Time {
	return s.now().In(s.loc).Truncate(time.Second)
}

func validateFields(court, problem, reporter string) error {
	switch {
	case strings.TrimSpace(court) == "":
		return fmt.Errorf("%w: court", domain.ErrValidation)
	case strings.TrimSpace(problem) == "":
		return fmt.Errorf("%w: problem", domain.ErrValidation)
	case strings.TrimSpace(reporter) == "":
		return fmt.Errorf("%w: reporter", domain.ErrValidation)
	}
	return nil
}

func indexOf(issues []domain.Issue, id string) int {
	for i, issue := range issues {
		if issue.ID == id {
			return i
		}
	}
	return -1
}
