// Package models defines the core domain models for FairShare.
//
// # Models
//
//   - Bill: the single bill being split in an editing session
//   - Participant: a person the bill is split between
//   - LineItem: an individual line on the receipt
//   - SplitLogic / SplitAllocation: how one line item is divided, as relative weights
//   - AdditionalCharge: a bill-level surcharge (tax, tip, service fee)
//
// # Invariants
//
// A Bill handed out by the normalize or billstore packages always satisfies:
//
//  1. Every SplitLogic.ItemID references an existing LineItem, at most one per item.
//  2. Every SplitAllocation.ParticipantID references an existing Participant,
//     at most one allocation per participant per SplitLogic.
//  3. Weights and prices are finite and non-negative; Quantity >= 1.
//  4. Deleting a Participant removes every allocation that references it.
//  5. Deleting a LineItem removes its SplitLogic entry.
//  6. AdditionalCharge ids are unique.
//  7. There is at least one Participant.
//
// Relationships use ID strings rather than pointers, so a Bill is a plain value
// that can be cloned and serialized without cycles.
package models
