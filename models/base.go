package models

import "fmt"

var (
	// ErrAgencyIdRequired is returned when the context lacks an agency id.
	ErrAgencyIdRequired = fmt.Errorf("agency id is required")
	// ErrDBNotInitialized is returned when the DB connection has not been established.
	ErrDBNotInitialized = fmt.Errorf("database not initialized")
)
