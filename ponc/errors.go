// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ponc

import "fmt"

// ErrorCode identifies a category of PoNC engine failure (spec §4.2).
type ErrorCode int

const (
	// ErrUnsupportedPoNCParams is returned by NewScratchpad (and so by
	// VerifyNonce) when the requested scratchpad size is zero, not a
	// multiple of 32, or not a power of two. Round counts are not
	// checked.
	ErrUnsupportedPoNCParams ErrorCode = iota

	// ErrScratchpadNotInitialized names a scratchpad that has not been
	// built. No function in this package returns it: EvaluateNonce
	// takes an already-built *Scratchpad.
	ErrScratchpadNotInitialized

	// ErrBadNonce is returned by VerifyNonce when the recomputed PoW
	// hash does not satisfy the header's claimed target.
	ErrBadNonce
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnsupportedPoNCParams:
		return "unsupported PoNC parameters"
	case ErrScratchpadNotInitialized:
		return "scratchpad not initialized"
	case ErrBadNonce:
		return "bad nonce"
	default:
		return "unknown PoNC error"
	}
}

// RuleError is the error type returned by this package's validation and
// evaluation routines. It never embeds attacker-controlled header bytes,
// only the small structured fields relevant to the failure.
type RuleError struct {
	Code        ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func ruleError(code ErrorCode, desc string) RuleError {
	return RuleError{Code: code, Description: desc}
}
