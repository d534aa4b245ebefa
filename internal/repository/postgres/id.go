package postgres

import "github.com/google/uuid"

// newProfileID supplies the id for the insert half of the profile
// upsert; it is discarded when the row already exists.
func newProfileID() string { return uuid.New().String() }
