// Copyright (c) 2025 The PONC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package governance exposes the two pure reads spec §4.7 grants the
// registrar (tally and current parameters) as a thin façade over the
// store, plus the small table of known parameter deployments the block
// applier consults when a proposal's activation height arrives.
//
// Target hashes are derived externally from "param:value" text (spec §3);
// the store only ever sees the 32-byte hash, never the text. Mapping a
// recognized hash back to a concrete field and value is therefore the
// node operator's responsibility, not something consensus data alone can
// reconstruct — the same shape as the teacher's version-bits deployment
// table, where an unrecognized bit is logged and otherwise ignored rather
// than rejected (blockchain/versionbits.go's warnUnknownRuleActivations).
package governance

import (
	"github.com/ponknot/ponc/chainhash"
	"github.com/ponknot/ponc/chaincfg"
	"github.com/ponknot/ponc/store"
)

// ParamField identifies which TunableParameters field a deployment sets.
type ParamField int

const (
	FieldGovernanceCapBps ParamField = iota
	FieldPoNCRounds
	FieldScratchpadBytes
	FieldMaxBlockBytes
	FieldDisputeWindow
)

// Deployment binds a proposal's target hash to the concrete parameter
// change it represents. Unrecognized targets are never fatal: they pass
// through voting and tallying like any other proposal, but the applier
// has nothing to write when their activation height arrives.
type Deployment struct {
	Field ParamField
	Value uint64
}

// KnownDeployments maps proposal target hashes to the parameter change
// they encode. Empty by default; a network registers entries here (or in
// a future config-driven override) as deployments are defined.
var KnownDeployments = map[chainhash.Hash]Deployment{}

// Apply returns params with d's field set to d.Value.
func Apply(params chaincfg.TunableParameters, d Deployment) chaincfg.TunableParameters {
	switch d.Field {
	case FieldGovernanceCapBps:
		params.GovernanceCapBps = uint32(d.Value)
	case FieldPoNCRounds:
		params.PoNCRounds = uint32(d.Value)
	case FieldScratchpadBytes:
		params.ScratchpadBytes = d.Value
	case FieldMaxBlockBytes:
		params.MaxBlockBytes = uint32(d.Value)
	case FieldDisputeWindow:
		params.DisputeWindow = uint32(d.Value)
	}
	return params
}

// Registrar wraps a Store with the two read-only operations spec §4.7
// names. All writes happen inside blockchain.Chain.AcceptBlock's atomic
// commit; Registrar never mutates state.
type Registrar struct {
	store *store.Store
}

// New returns a Registrar backed by s.
func New(s *store.Store) *Registrar {
	return &Registrar{store: s}
}

// TallyResult reports a proposal's current standing.
type TallyResult struct {
	WeightBps        uint64
	Passed           bool
	ActivationHeight uint32
	HasActivation    bool
}

// Tally returns target's current cumulative weight and pass/activation
// state. A target never seen by any vote reports the zero TallyResult.
func (r *Registrar) Tally(target chainhash.Hash) (TallyResult, error) {
	p, err := r.store.GetProposal(target)
	if err != nil {
		return TallyResult{}, err
	}
	if p == nil {
		return TallyResult{}, nil
	}
	return TallyResult{
		WeightBps:        p.CumulativeWeightBps,
		Passed:           p.Passed,
		ActivationHeight: p.ActivationHeight,
		HasActivation:    p.Passed,
	}, nil
}

// CurrentParams returns the tunables currently in force, falling back to
// defaults only if the chain has not yet been bootstrapped.
func (r *Registrar) CurrentParams(defaults chaincfg.TunableParameters) (chaincfg.TunableParameters, error) {
	params, ok, err := r.store.GetParams()
	if err != nil {
		return chaincfg.TunableParameters{}, err
	}
	if !ok {
		return defaults, nil
	}
	return params, nil
}
