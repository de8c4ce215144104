package services

import "time"

// nextTimeID hands out time-based ids that stay strictly above every id in use.
func nextTimeID(now time.Time, ids []int64) int64 {
	id := now.UnixMilli()
	for _, existing := range ids {
		if existing >= id {
			id = existing + 1
		}
	}
	return id
}
