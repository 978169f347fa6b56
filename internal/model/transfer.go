package model

import "encoding/json"

// BroadcastOutcome is the answer of a single reachable node to a
// transaction batch. Unreachable nodes produce no outcome at all.
type BroadcastOutcome struct {
	Node          Node            `json:"node"`
	Accepted      bool            `json:"accepted"`
	TransactionID string          `json:"transactionId,omitempty"`
	Response      json.RawMessage `json:"response,omitempty"`
}

// TransferResult aggregates per-node outcomes of one broadcast.
// Outcomes follow the configured node order; an empty slice means every
// node call failed.
type TransferResult struct {
	Outcomes []BroadcastOutcome `json:"outcomes"`
}

// AcceptedID returns the transaction id from the first outcome that carries
// an accepted transaction, if any.
func (r TransferResult) AcceptedID() (string, bool) {
	for _, o := range r.Outcomes {
		if o.Accepted && o.TransactionID != "" {
			return o.TransactionID, true
		}
	}
	return "", false
}
