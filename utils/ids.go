package utils

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator mints unique identifiers for records and request correlation.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator returns random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
