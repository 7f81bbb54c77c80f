package entities

import (
	"fmt"
	"regexp"
	"time"

	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

var (
	addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	hashPattern    = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+$`)
)

// FeeEvent is one decoded FeesCollected log occurrence. Fee amounts are
// carried as decimal strings; no floating point ever touches them.
type FeeEvent struct {
	ChainID         int64     `bson:"chainId" json:"chainId"`
	ContractAddress string    `bson:"contractAddress" json:"contractAddress"`
	Token           string    `bson:"token" json:"token"`
	Integrator      string    `bson:"integrator" json:"integrator"`
	IntegratorFee   string    `bson:"integratorFee" json:"integratorFee"`
	LifiFee         string    `bson:"lifiFee" json:"lifiFee"`
	BlockNumber     int64     `bson:"blockNumber" json:"blockNumber"`
	TransactionHash string    `bson:"transactionHash" json:"transactionHash"`
	LogIndex        int       `bson:"logIndex" json:"logIndex"`
	CreatedAt       time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// EventIdentity is the globally unique key of a stored event.
type EventIdentity struct {
	ChainID         int64
	TransactionHash string
	LogIndex        int
}

// Identity returns the event's unique key.
func (e *FeeEvent) Identity() EventIdentity {
	return EventIdentity{
		ChainID:         e.ChainID,
		TransactionHash: e.TransactionHash,
		LogIndex:        e.LogIndex,
	}
}

// Key renders the identity as a map key.
func (id EventIdentity) Key() string {
	return fmt.Sprintf("%d:%s:%d", id.ChainID, id.TransactionHash, id.LogIndex)
}

// Validate checks the decoded fields of the event: addresses and hash are
// lowercase hex of the right length, fees are non-negative decimal
// strings, block number and log index are non-negative. The chain tag is
// checked separately by ValidateStored.
func (e *FeeEvent) Validate() error {
	if !IsAddress(e.ContractAddress) {
		return errs.NewValidation("invalid contract address %q", e.ContractAddress)
	}
	if !IsAddress(e.Token) {
		return errs.NewValidation("invalid token address %q", e.Token)
	}
	if !IsAddress(e.Integrator) {
		return errs.NewValidation("invalid integrator address %q", e.Integrator)
	}
	if !decimalPattern.MatchString(e.IntegratorFee) {
		return errs.NewValidation("invalid integrator fee %q", e.IntegratorFee)
	}
	if !decimalPattern.MatchString(e.LifiFee) {
		return errs.NewValidation("invalid lifi fee %q", e.LifiFee)
	}
	if e.BlockNumber < 0 {
		return errs.NewValidation("negative block number %d", e.BlockNumber)
	}
	if !hashPattern.MatchString(e.TransactionHash) {
		return errs.NewValidation("invalid transaction hash %q", e.TransactionHash)
	}
	if e.LogIndex < 0 {
		return errs.NewValidation("negative log index %d", e.LogIndex)
	}
	return nil
}

// ValidateStored checks the full storage record, including the chain tag.
func (e *FeeEvent) ValidateStored() error {
	if e.ChainID <= 0 {
		return errs.NewValidation("invalid chain id %d", e.ChainID)
	}
	return e.Validate()
}

// IsAddress reports whether s is a lowercase 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsHash reports whether s is a lowercase 0x-prefixed 32-byte hex hash.
func IsHash(s string) bool {
	return hashPattern.MatchString(s)
}
