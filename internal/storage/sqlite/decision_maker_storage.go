package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// DecisionMakerStorage implements interfaces.DecisionMakerStorage for SQLite
type DecisionMakerStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewDecisionMakerStorage creates a new DecisionMakerStorage instance
func NewDecisionMakerStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.DecisionMakerStorage {
	return &DecisionMakerStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a found decision maker, replacing any previous contact
// for the company. Sentinel "not found" results are never stored.
func (s *DecisionMakerStorage) Upsert(ctx context.Context, companyID int64, result *models.DecisionMakerResult) error {
	if !result.Found() {
		return fmt.Errorf("refusing to store empty decision maker for company %d", companyID)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO decision_makers (company_id, person_name, title, source_url, confidence, looked_up_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(company_id) DO UPDATE SET
			person_name = excluded.person_name,
			title = excluded.title,
			source_url = excluded.source_url,
			confidence = excluded.confidence,
			updated_at = CURRENT_TIMESTAMP`,
		companyID, result.PersonName, result.Title, result.SourceURL, result.Confidence)
	if err != nil {
		return fmt.Errorf("failed to upsert decision maker: %w", err)
	}

	return nil
}

// SetContact records the email pass outcome for the stored contact
func (s *DecisionMakerStorage) SetContact(ctx context.Context, companyID int64, email, linkedinURL string) error {
	result, err := s.db.Exec(ctx, `
		UPDATE decision_makers SET
			email = CASE WHEN ? != '' THEN ? ELSE email END,
			linkedin_url = CASE WHEN ? != '' THEN ? ELSE linkedin_url END,
			updated_at = CURRENT_TIMESTAMP
		WHERE company_id = ?`,
		email, email, linkedinURL, linkedinURL, companyID)
	if err != nil {
		return fmt.Errorf("failed to set contact details: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("no decision maker stored for company %d", companyID)
	}
	return nil
}

// GetByCompany returns the stored contact, or nil when none exists
func (s *DecisionMakerStorage) GetByCompany(ctx context.Context, companyID int64) (*models.DecisionMaker, error) {
	var dm models.DecisionMaker
	err := s.db.DB().QueryRowContext(ctx, `
		SELECT id, company_id, person_name, COALESCE(title, ''), COALESCE(source_url, ''), COALESCE(confidence, ''),
			COALESCE(email, ''), COALESCE(linkedin_url, ''), looked_up_at, updated_at
		FROM decision_makers WHERE company_id = ?`, companyID).
		Scan(&dm.ID, &dm.CompanyID, &dm.PersonName, &dm.Title, &dm.SourceURL, &dm.Confidence,
			&dm.Email, &dm.LinkedInURL, &dm.LookedUpAt, &dm.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision maker: %w", err)
	}
	return &dm, nil
}
