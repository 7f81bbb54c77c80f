package entities

import (
	"time"
)

// ScanProgress is the per-chain cursor: the highest block for which all
// events up to and including that block have been persisted.
type ScanProgress struct {
	ChainID     int64     `bson:"chainId" json:"chainId"`
	BlockNumber int64     `bson:"blockNumber" json:"blockNumber"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
