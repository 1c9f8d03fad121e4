package sqlite

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
)

// Manager implements the StorageManager interface
type Manager struct {
	db             *SQLiteDB
	companies      interfaces.CompanyStorage
	jobs           interfaces.JobStorage
	decisionMakers interfaces.DecisionMakerStorage
	atsCache       interfaces.ATSCacheStorage
	seenCompanies  interfaces.SeenCompanyStorage
	snapshots      interfaces.SnapshotStorage
	statistics     interfaces.StatisticsStorage
	export         interfaces.ExportStorage
	logger         arbor.ILogger
}

// NewManager creates a new SQLite storage manager
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (interfaces.StorageManager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, err
	}

	snapshots := NewSnapshotStorage(db, logger)

	return &Manager{
		db:             db,
		companies:      NewCompanyStorage(db, logger),
		jobs:           NewJobStorage(db, logger),
		decisionMakers: NewDecisionMakerStorage(db, logger),
		atsCache:       NewATSCacheStorage(db, logger),
		seenCompanies:  NewSeenCompanyStorage(db, logger),
		snapshots:      snapshots,
		statistics:     NewStatisticsStorage(db, snapshots, logger),
		export:         NewExportStorage(db, logger),
		logger:         logger,
	}, nil
}

// CompanyStorage returns the Company storage interface
func (m *Manager) CompanyStorage() interfaces.CompanyStorage {
	return m.companies
}

// JobStorage returns the Job storage interface
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobs
}

// DecisionMakerStorage returns the DecisionMaker storage interface
func (m *Manager) DecisionMakerStorage() interfaces.DecisionMakerStorage {
	return m.decisionMakers
}

// ATSCacheStorage returns the ATS cache storage interface
func (m *Manager) ATSCacheStorage() interfaces.ATSCacheStorage {
	return m.atsCache
}

// SeenCompanyStorage returns the seen-company storage interface
func (m *Manager) SeenCompanyStorage() interfaces.SeenCompanyStorage {
	return m.seenCompanies
}

// SnapshotStorage returns the run snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshots
}

// StatisticsStorage returns the statistics storage interface
func (m *Manager) StatisticsStorage() interfaces.StatisticsStorage {
	return m.statistics
}

// ExportStorage returns the export storage interface
func (m *Manager) ExportStorage() interfaces.ExportStorage {
	return m.export
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
