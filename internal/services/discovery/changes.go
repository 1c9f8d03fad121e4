// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package discovery

import "github.com/ternarybob/leadhound/internal/models"

// ChangeSet is the three-way diff between a company's currently active
// jobs and the jobs fetched this run.
type ChangeSet struct {
	// New are fetched postings whose external id has no active row.
	New []models.JobPosting

	// RemovedIDs are row ids of active jobs absent from the fetch.
	RemovedIDs []int64

	// SurvivingIDs are row ids present in both sets.
	SurvivingIDs []int64
}

// ComputeChanges diffs the active external-id set against the fetched
// postings. active maps external_id to job row id as read before any of
// this run's writes. Duplicate external ids within one fetch are
// collapsed to the first occurrence.
func ComputeChanges(active map[string]int64, fetched []models.JobPosting) ChangeSet {
	var changes ChangeSet

	fetchedIDs := make(map[string]bool, len(fetched))
	for _, posting := range fetched {
		if posting.ExternalID == "" || fetchedIDs[posting.ExternalID] {
			continue
		}
		fetchedIDs[posting.ExternalID] = true

		if jobID, ok := active[posting.ExternalID]; ok {
			changes.SurvivingIDs = append(changes.SurvivingIDs, jobID)
		} else {
			changes.New = append(changes.New, posting)
		}
	}

	for externalID, jobID := range active {
		if !fetchedIDs[externalID] {
			changes.RemovedIDs = append(changes.RemovedIDs, jobID)
		}
	}

	return changes
}
