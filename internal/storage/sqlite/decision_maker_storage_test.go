package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

func TestDecisionMakerStorage_UpsertAndContact(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDecisionMakerStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.Upsert(ctx, companyID, &models.DecisionMakerResult{
		CompanyName: "Acme", PersonName: "Jane Smith", Title: "CMO", Confidence: "High",
	}))
	require.NoError(t, storage.SetContact(ctx, companyID, "jane@acme.com", ""))

	dm, err := storage.GetByCompany(ctx, companyID)
	require.NoError(t, err)
	require.NotNil(t, dm)
	assert.Equal(t, "Jane Smith", dm.PersonName)
	assert.Equal(t, "jane@acme.com", dm.Email)

	// A fresh lookup replaces the contact, keyed by company
	require.NoError(t, storage.Upsert(ctx, companyID, &models.DecisionMakerResult{
		CompanyName: "Acme", PersonName: "Sam Lee", Title: "CEO", Confidence: "Medium",
	}))
	dm, err = storage.GetByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Lee", dm.PersonName)
}

func TestDecisionMakerStorage_UnknownCompanyIsConflict(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDecisionMakerStorage(db, arbor.NewLogger())

	err := storage.Upsert(context.Background(), 9999, &models.DecisionMakerResult{
		CompanyName: "Ghost", PersonName: "Nobody Real",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrConflict))
}
