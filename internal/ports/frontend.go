package ports

// Frontend is a message intake surface (inbox poller, HTTP API, one-shot CLI).
type Frontend interface {
	// Start begins accepting work. Implementations return promptly and do
	// their work on background goroutines.
	Start() error
	// Stop shuts the front end down gracefully.
	Stop() error
}
