package database

// Database defines the interface of a generic dagd database. The consensus
// core treats it as a durable map of key→bytes with synchronous access.
type Database interface {
	DataAccessor

	// Begin begins a new database transaction.
	Begin() (Transaction, error)

	// Compact compacts the database instance.
	Compact() error

	// Close closes the database.
	Close() error
}
