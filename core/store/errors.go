package store

import "errors"

// Sentinel errors for the external store contract. Callers match them with
// errors.Is; adapters wrap transport detail around them.
var (
	// ErrJobNotFound is returned when the referenced job does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrProviderUnavailable is returned when the provider is off duty,
	// already bound, or lost a reservation race.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrJobAlreadyAssigned is returned when binding a provider to a job
	// that already has one and reassignment was not requested.
	ErrJobAlreadyAssigned = errors.New("job already assigned")

	// ErrInvalidTransition is returned for a status change that is not an
	// edge of the lifecycle graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyReserved is returned by the reserve primitive when the
	// provider was taken between read and write.
	ErrAlreadyReserved = errors.New("provider already reserved")

	// ErrStoreUnreachable wraps network or backend failures on any call.
	ErrStoreUnreachable = errors.New("store unreachable")
)
