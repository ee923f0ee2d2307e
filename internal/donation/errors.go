package donation

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoProvider     = errors.New("no provider available")
	ErrNoAccount      = errors.New("no authorized account")
	ErrNotDeployed    = contract.ErrNotDeployed
	ErrActionPending  = errors.New("another submission is already pending")
	ErrNotOwner       = errors.New("only the contract owner can do this")
	ErrSweepDisabled  = errors.New("sweep is disabled while tokens are outstanding")
	ErrInvalidAmount  = units.ErrInvalidAmount
	ErrInvalidAddress = errors.New("invalid address")
	ErrNoSnapshot     = errors.New("no snapshot loaded yet")
)

// ConnKind says which part of session setup failed.
type ConnKind int

const (
	NoProvider ConnKind = iota
	NoAccount
)

func (k ConnKind) String() string {
	if k == NoAccount {
		return "no account"
	}
	return "no provider"
}

// ConnectionError is fatal: nothing works without a session.
type ConnectionError struct {
	Kind  ConnKind
	Tried []string // provider URLs attempted
	Err   error    // last underlying failure, may be nil
}

func (e *ConnectionError) Error() string {
	msg := e.Kind.String()
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried %v)", e.Tried)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() []error {
	sentinel := ErrNoProvider
	if e.Kind == NoAccount {
		sentinel = ErrNoAccount
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// BindingError reports a contract that could not be resolved on the
// session's network.
type BindingError struct {
	Contract string
	Network  string
	Err      error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %s on network %s: %v", e.Contract, e.Network, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// ReadError fails a whole snapshot or refresh. Field names the read that
// failed.
type ReadError struct {
	Field string
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Field, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Submission stages.
const (
	StageEncode  = "encode"
	StageSubmit  = "submit"
	StageConfirm = "confirm"
)

// SubmissionError covers provider rejection, revert and out-of-gas.
type SubmissionError struct {
	Action Action
	Stage  string
	TxHash common.Hash // zero before broadcast
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.TxHash != (common.Hash{}) {
		return fmt.Sprintf("%s failed at %s (tx %s): %v", e.Action, e.Stage, e.TxHash.Hex(), e.Err)
	}
	return fmt.Sprintf("%s failed at %s: %v", e.Action, e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
