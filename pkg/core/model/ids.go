package model

import "github.com/google/uuid"

// IDGenerator produces unique identifiers for new shifts and groups.
// It is injected everywhere ids are minted so tests can supply a
// deterministic sequence and assert exact output shapes.
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.New().String()
}
