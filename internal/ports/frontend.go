package ports

// Frontend is how a user drives runs
type Frontend interface {
	// Start begins serving. It may block (CLI) or return immediately (dashboard).
	Start() error

	// Stop releases the frontend's resources
	Stop() error
}
