package outbox

// Outbox rows are written in the same transaction as the state change they announce.
// The worker relay publishes pending rows and flips them to published.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// DefaultRelayBatchSize bounds how many pending rows one relay cycle reads.
const DefaultRelayBatchSize = 100
