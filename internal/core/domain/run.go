package domain

import "time"

// ValidationRun is the history record of one validate invocation.
type ValidationRun struct {
	ID           string
	DocumentPath string
	SchemaInput  string
	SchemaSource SchemaSource
	Format       Format
	FormatOrigin FormatOrigin
	Valid        bool
	ErrorKind    ErrorKind
	ErrorCount   int
	Message      string
	CreatedAt    time.Time
}

type RunFilter struct {
	Limit int
	// OnlyFailed restricts the listing to runs that did not pass.
	OnlyFailed bool
}
