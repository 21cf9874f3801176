package domain

import "errors"

var (
	// ErrQuotaExceeded is returned when a counter has already reached the
	// plan ceiling for the requested dimension.
	ErrQuotaExceeded = errors.New("plan quota exceeded")

	// ErrTrackerNotFound is returned when no tracker row exists for the
	// organization. Provisioning is supposed to create one alongside the
	// organization, so a miss is an integrity fault, not a user error.
	ErrTrackerNotFound = errors.New("plan tracker not found")

	// ErrPlanNotFound is returned when the owning shopkeeper has no
	// resolvable plan.
	ErrPlanNotFound = errors.New("plan not found for shopkeeper")

	// ErrTransientConflict is returned when the guarded transaction lost a
	// serialization conflict and should be retried by the caller.
	ErrTransientConflict = errors.New("transient serialization conflict")
)
