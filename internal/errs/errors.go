package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockchainKind narrows a BlockchainError to the provider failure mode.
type BlockchainKind string

const (
	KindRPC     BlockchainKind = "rpc"
	KindNetwork BlockchainKind = "network"
	KindTimeout BlockchainKind = "timeout"
	KindGeneric BlockchainKind = "blockchain"
)

// ValidationError reports invalid input. It is never retried.
type ValidationError struct {
	msg string
}

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// BlockchainError reports a provider-side failure: transport, timeout,
// or malformed event data. Retryable at window granularity.
type BlockchainError struct {
	Kind BlockchainKind
	msg  string
	err  error
}

func NewBlockchain(kind BlockchainKind, msg string, err error) *BlockchainError {
	return &BlockchainError{Kind: kind, msg: msg, err: err}
}

func (e *BlockchainError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *BlockchainError) Unwrap() error { return e.err }

// DatabaseError reports storage unavailability or an unexpected write failure.
type DatabaseError struct {
	msg string
	err error
}

func NewDatabase(msg string, err error) *DatabaseError {
	return &DatabaseError{msg: msg, err: err}
}

func (e *DatabaseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *DatabaseError) Unwrap() error { return e.err }

// ConfigurationError is fatal at process startup.
type ConfigurationError struct {
	msg string
}

func NewConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string { return e.msg }

// NotFoundError is reserved for the read path.
type NotFoundError struct {
	msg string
}

func NewNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.msg }

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsBlockchain(err error) bool {
	var t *BlockchainError
	return errors.As(err, &t)
}

func IsDatabase(err error) bool {
	var t *DatabaseError
	return errors.As(err, &t)
}

func IsConfiguration(err error) bool {
	var t *ConfigurationError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

// ClassifyBlockchain wraps a provider failure into a BlockchainError with
// the closest matching kind. Timeouts are checked before generic network
// errors because net timeouts satisfy both.
func ClassifyBlockchain(op string, err error) *BlockchainError {
	if err == nil {
		return nil
	}

	kind := KindGeneric

	var netErr net.Error
	var rpcErr rpc.Error

	switch {
	case isTimeout(err):
		kind = KindTimeout
	case errors.As(err, &rpcErr):
		kind = KindRPC
	case errors.As(err, &netErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		containsAny(err, "connection refused", "connection reset", "no such host", "bad gateway", "service unavailable"):
		kind = KindNetwork
	}

	return &BlockchainError{Kind: kind, msg: op, err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return containsAny(err, "timeout", "deadline exceeded")
}

func containsAny(err error, fragments ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
