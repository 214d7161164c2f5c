// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

// State is one stage of the evaluation pipeline. Transitions are linear,
// from Idle through CollectingSignals, Scoring, AwaitingExplanation,
// Fusing, and Aggregating to Persisted, with Failed as the only other
// terminal state. An explanation-service
// failure never transitions to Failed; it degrades to "no new
// explanations" and the pipeline continues. The resubmission workflow
// enters directly at AwaitingExplanation.
type State string

const (
	StateIdle                State = "Idle"
	StateCollectingSignals   State = "CollectingSignals"
	StateScoring             State = "Scoring"
	StateAwaitingExplanation State = "AwaitingExplanation"
	StateFusing              State = "Fusing"
	StateAggregating         State = "Aggregating"
	StatePersisted           State = "Persisted"
	StateFailed              State = "Failed"
)
