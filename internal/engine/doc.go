// Package engine implements the adaptive recommendation engine.
//
// The engine is a pure function of (profile, history, now): it never
// mutates its inputs, performs no I/O and carries no state between calls.
//
// EVALUATION:
//
// 1. Analyze derives today's total, the percentage of the daily limit and
// the recency flags (walk, water, protein) over a 60-minute look-back.
// 2. SelectRule picks at most one recommendation by fixed priority order,
// first match wins, each rule guarded by "not recently done".
// 3. SelectHeadline picks the headline/rationale pair independently.
// 4. Evaluate renders the decision, asking a MessageSource for the only
// randomised part (the reason suffix).
//
// The decision (Rule, Headline) is fully deterministic. Message wording
// is cosmetic and injectable so tests can pin it.
package engine
