// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "fmt"

// ErrorCode identifies a category of mempool admission/eviction failure
// (spec §4.5).
type ErrorCode int

const (
	// ErrMempoolFull indicates the pool has reached its configured
	// size/count ceiling and the incoming transaction does not replace
	// an existing one.
	ErrMempoolFull ErrorCode = iota

	// ErrNonceGap indicates the transaction's nonce does not equal the
	// sender's expected next nonce against the committed tip.
	ErrNonceGap

	// ErrInsufficientFunds indicates the sender's committed-tip balance
	// does not cover amount+fee.
	ErrInsufficientFunds

	// ErrFeeTooLow indicates the fee is below the protocol minimum.
	ErrFeeTooLow

	// ErrRBFRejected indicates a same-(sender,nonce) replacement did not
	// clear the fee-bump bar (>=10% higher, >=1 knot absolute increase).
	ErrRBFRejected

	// ErrSignatureInvalid indicates the post-quantum signature did not
	// verify against the claimed sender.
	ErrSignatureInvalid
)

func (c ErrorCode) String() string {
	switch c {
	case ErrMempoolFull:
		return "mempool full"
	case ErrNonceGap:
		return "nonce gap"
	case ErrInsufficientFunds:
		return "insufficient funds"
	case ErrFeeTooLow:
		return "fee too low"
	case ErrRBFRejected:
		return "RBF rejected"
	case ErrSignatureInvalid:
		return "signature invalid"
	default:
		return "unknown mempool error"
	}
}

// RuleError is the error type every rejected admission returns. Like the
// wire and ponc error types, it never embeds raw transaction bytes.
type RuleError struct {
	Code        ErrorCode
	Description string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func ruleError(code ErrorCode, desc string) *RuleError {
	return &RuleError{Code: code, Description: desc}
}
