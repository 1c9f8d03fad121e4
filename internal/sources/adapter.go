// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package sources

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/ternarybob/leadhound/internal/models"
)

// Adapter delivers company candidates from one upstream source.
//
// dateFilter is an ISO date (YYYY-MM-DD) restricting listing-bearing
// sources to one listing day; empty means all available dates. Sources
// without per-listing dates stamp candidates with the filter date (or
// today when empty).
type Adapter interface {
	Name() string
	FetchCandidates(ctx context.Context, dateFilter string) ([]models.CompanyCandidate, error)
}

// hashID derives a short stable external id for listings whose source
// assigns none of its own.
func hashID(seed string) string {
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])[:16]
}
