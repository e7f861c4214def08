package services

import "time"

// utcNow stamps records in UTC so stored times sort the same on every backend.
func utcNow() time.Time {
	return time.Now().UTC()
}
