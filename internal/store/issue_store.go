package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vbonduro/courtlog/internal/domain"
)

// IssueStore persists the full issue set in a single sqlite table. The
// contract is set-level: LoadAll returns the whole snapshot and SaveAll
// atomically replaces it. At the expected scale (tens to low thousands of
// records) this keeps readers from ever observing a partial write.
type IssueStore struct {
	db       *sql.DB
	loc      *time.Location
	validate *validator.Validate
	logger   *slog.Logger
}

func NewIssueStore(db *sql.DB, loc *time.Location, logger *slog.Logger) *IssueStore {
	return &IssueStore{
		db:       db,
		loc:      loc,
		validate: validator.New(),
		logger:   logger,
	}
}

// LoadAll reads every persisted issue in snapshot order. A missing or empty
// table yields an empty slice. An unreadable or corrupt store is logged and
// also yields an empty slice so the app stays usable in degraded mode.
func (s *IssueStore) LoadAll(ctx context.Context) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, court, problem, photo_path, reporter FROM issues ORDER BY rowid
	`)
	if err != nil {
		s.logger.Error("failed to read issue store, continuing with empty set", "error", err)
		return []domain.Issue{}, nil
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", "error", err)
		}
	}()

	var issues []domain.Issue
	for rows.Next() {
		var (
			issue     domain.Issue
			date      string
			photoPath sql.NullString
		)
		if err := rows.Scan(&issue.ID, &date, &issue.Court, &issue.Problem, &photoPath, &issue.Reporter); err != nil {
			s.logger.Error("failed to scan issue row, continuing with empty set", "error", err)
			return []domain.Issue{}, nil
		}
		reportedAt, err := time.ParseInLocation(domain.TimeLayout, date, s.loc)
		if err != nil {
			s.logger.Error("corrupt issue timestamp, continuing with empty set", "id", issue.ID, "date", date, "error", err)
			return []domain.Issue{}, nil
		}
		issue.ReportedAt = reportedAt
		if photoPath.Valid {
			issue.PhotoKey = &photoPath.String
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("error iterating issues, continuing with empty set", "error", err)
		return []domain.Issue{}, nil
	}

	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// SaveAll replaces the persisted set with issues in a single transaction.
// Every record must carry all required fields; a structurally invalid record
// rejects the whole write with ErrInvalidRecord and nothing is persisted.
func (s *IssueStore) SaveAll(ctx context.Context, issues []domain.Issue) error {
	for _, issue := range issues {
		if err := s.validate.Struct(issue); err != nil {
			return fmt.Errorf("%w: issue %q: %v", domain.ErrInvalidRecord, issue.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.logger.Error("failed to roll back transaction", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues`); err != nil {
		return fmt.Errorf("failed to clear issues: %w", err)
	}

	for _, issue := range issues {
		var photoPath sql.NullString
		if issue.PhotoKey != nil {
			photoPath = sql.NullString{String: *issue.PhotoKey, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issues (id, date, court, problem, photo_path, reporter)
			VALUES (?, ?, ?, ?, ?, ?)
		`, issue.ID, issue.ReportedAt.In(s.loc).Format(domain.TimeLayout),
			issue.Court, issue.Problem, photoPath, issue.Reporter)
		if err != nil {
			return fmt.Errorf("failed to insert issue %s: %w", issue.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit issues: %w", err)
	}
	return nil
}
