// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The briefing stages (Dedupe, ScoreAll, Rank, Assemble, RenderBrief) are
// pure functions of their inputs and an injected now. Pipeline wires them
// to fetchers, normalisers, delivery sinks and the run log.
package services
