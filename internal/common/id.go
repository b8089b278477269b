package common

import (
	"github.com/google/uuid"
)

// NewAgentKey generates a unique agent key scoping one tenant's data.
// Created once per ingest session; never reused across tenants.
func NewAgentKey() string {
	return uuid.New().String()
}
