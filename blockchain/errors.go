// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a specific reason a block was rejected (spec §4.6
// "Errors (non-exhaustive)").
type ErrorCode int

const (
	ErrNoTransactions ErrorCode = iota
	ErrBadCoinbase
	ErrBlockTooLarge
	ErrBadTimestamp
	ErrMTPViolation
	ErrBadParent
	ErrBadTarget
	ErrBadPoW
	ErrBadMerkle
	ErrTxSignatureInvalid
	ErrTxSenderMismatch
	ErrTxNonceInvalid
	ErrTxInsufficientFunds
	ErrAmountOverflow
)

var errCodeStrings = map[ErrorCode]string{
	ErrNoTransactions:      "ErrNoTransactions",
	ErrBadCoinbase:         "ErrBadCoinbase",
	ErrBlockTooLarge:       "ErrBlockTooLarge",
	ErrBadTimestamp:        "ErrBadTimestamp",
	ErrMTPViolation:        "ErrMTPViolation",
	ErrBadParent:           "ErrBadParent",
	ErrBadTarget:           "ErrBadTarget",
	ErrBadPoW:              "ErrBadPoW",
	ErrBadMerkle:           "ErrBadMerkle",
	ErrTxSignatureInvalid:  "ErrTxSignatureInvalid",
	ErrTxSenderMismatch:    "ErrTxSenderMismatch",
	ErrTxNonceInvalid:      "ErrTxNonceInvalid",
	ErrTxInsufficientFunds: "ErrTxInsufficientFunds",
	ErrAmountOverflow:      "ErrAmountOverflow",
}

func (c ErrorCode) String() string {
	if s, ok := errCodeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// RuleError identifies a block or transaction that violates a consensus
// rule. The description never embeds raw attacker-controlled bytes (spec
// §7): callers format heights, counts, and hex-encoded hashes, never
// unbounded payloads.
type RuleError struct {
	Code        ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

func ruleError(code ErrorCode, desc string) RuleError {
	return RuleError{Code: code, Description: desc}
}
