package models

// Stats are the process-wide aggregate counters, read at shutdown.
type Stats struct {
	Clients  int // distinct connections accepted
	Sessions int // session goroutines ever spawned
	Adds     int // successful enrollments, including promotions
	Drops    int // successful drops
}
