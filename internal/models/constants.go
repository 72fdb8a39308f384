package models

const (
	// HeaderUserID carries the acting user on every user-scoped call.
	HeaderUserID = "X-Sharer-User-Id"

	// DefaultPageFrom and DefaultPageSize apply when the caller omits paging.
	DefaultPageFrom = 0
	DefaultPageSize = 10

	// DefaultStateToken is the listing filter used when state is omitted.
	DefaultStateToken = "ALL"
)

const (
	// DefaultUserRateLimit requests per acting user within DefaultUserRateWindow seconds.
	DefaultUserRateLimit  = 120
	DefaultUserRateWindow = 60

	// ForwarderQueueSize is the buffer of events awaiting delivery to the broker.
	ForwarderQueueSize = 1000
)
