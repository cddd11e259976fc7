package parser

import "time"

// IsRecent reports whether a listing passes the recency gate. Sources that
// never report a posting date always pass (hasPostedOn == false); the store
// assigns ingestion time for those.
func IsRecent(postedOn time.Time, hasPostedOn bool, cutoff time.Time) bool {
	if !hasPostedOn {
		return true
	}
	return !postedOn.Before(cutoff)
}
