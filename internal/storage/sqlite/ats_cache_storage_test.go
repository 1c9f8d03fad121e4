package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

func TestATSCacheStorage_StoreAndLookup(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewATSCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	entry := &models.ATSCacheEntry{
		Domain:     "acme.com",
		Provider:   "greenhouse",
		BoardToken: "acme",
		DetectedAt: time.Now(),
		ExpiresAt:  time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, storage.Store(ctx, entry))

	got, err := storage.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "greenhouse", got.Provider)
	assert.Equal(t, "acme", got.BoardToken)
}

func TestATSCacheStorage_LookupMiss(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewATSCacheStorage(db, arbor.NewLogger())

	got, err := storage.Lookup(context.Background(), "unknown.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestATSCacheStorage_ExpiredEntryEvictedOnLookup(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewATSCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Store(ctx, &models.ATSCacheEntry{
		Domain:     "acme.com",
		Provider:   "lever",
		BoardToken: "acme",
		DetectedAt: time.Now().Add(-8 * 24 * time.Hour),
		ExpiresAt:  time.Now().Add(-24 * time.Hour),
	}))

	got, err := storage.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The expired row is gone
	var count int
	err = db.DB().QueryRow("SELECT COUNT(*) FROM ats_cache WHERE domain = 'acme.com'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestATSCacheStorage_Purge(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewATSCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Store(ctx, &models.ATSCacheEntry{
		Domain: "old.com", Provider: "ashby",
		DetectedAt: time.Now().Add(-10 * 24 * time.Hour),
		ExpiresAt:  time.Now().Add(-3 * 24 * time.Hour),
	}))
	require.NoError(t, storage.Store(ctx, &models.ATSCacheEntry{
		Domain: "fresh.com", Provider: "workable",
		DetectedAt: time.Now(),
		ExpiresAt:  time.Now().Add(7 * 24 * time.Hour),
	}))

	purged, err := storage.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	got, err := storage.Lookup(ctx, "fresh.com")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDecisionMakerStorage_UpsertReplaceAndContact(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDecisionMakerStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.Upsert(ctx, companyID, &models.DecisionMakerResult{
		CompanyName: "Acme",
		PersonName:  "Jane Roe",
		Title:       "VP Marketing",
		SourceURL:   "https://acme.com/about",
		Confidence:  "High",
	}))

	// Replacement keeps one row per company
	require.NoError(t, storage.Upsert(ctx, companyID, &models.DecisionMakerResult{
		CompanyName: "Acme",
		PersonName:  "John Doe",
		Title:       "CMO",
		Confidence:  "Medium",
	}))

	dm, err := storage.GetByCompany(ctx, companyID)
	require.NoError(t, err)
	require.NotNil(t, dm)
	assert.Equal(t, "John Doe", dm.PersonName)
	assert.Equal(t, "CMO", dm.Title)

	require.NoError(t, storage.SetContact(ctx, companyID, "john@acme.com", "https://linkedin.com/in/johndoe"))

	dm, err = storage.GetByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, "john@acme.com", dm.Email)
	assert.Equal(t, "https://linkedin.com/in/johndoe", dm.LinkedInURL)
}

func TestDecisionMakerStorage_RejectsNotFoundResult(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDecisionMakerStorage(db, arbor.NewLogger())
	companyID := seedCompany(t, db, "acme.com")

	err := storage.Upsert(context.Background(), companyID, &models.DecisionMakerResult{
		CompanyName:    "Acme",
		NotFoundReason: models.NotIdentifiableSentinel,
	})
	assert.Error(t, err)
}
