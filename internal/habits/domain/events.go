package domain

import (
	"math/big"

	sharedDomain "github.com/felixgeelhaar/keepup/internal/shared/domain"
)

const aggregateType = "Subject"

const (
	RoutingKeySnapshotSettled      = "habits.snapshot.settled"
	RoutingKeySnapshotFailed       = "habits.snapshot.failed"
	RoutingKeyTransactionConfirmed = "habits.transaction.confirmed"
)

// SnapshotSettled is emitted when a refresh publishes a new snapshot.
type SnapshotSettled struct {
	sharedDomain.BaseEvent
	Wallet         string `json:"wallet"`
	Contract       string `json:"contract"`
	Generation     uint64 `json:"generation"`
	ActiveTasks    int    `json:"active_tasks"`
	CompletedToday int    `json:"completed_today"`
	CurrentStreak  uint64 `json:"current_streak"`
	PendingReward  string `json:"pending_reward"`
	LifetimeTotal  string `json:"lifetime_total"`
}

// NewSnapshotSettled creates a SnapshotSettled event.
func NewSnapshotSettled(s Subject, generation uint64, active, completed int, streak uint64, pending, lifetime *big.Int) *SnapshotSettled {
	return &SnapshotSettled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.String(), aggregateType, RoutingKeySnapshotSettled),
		Wallet:         s.Wallet.Hex(),
		Contract:       s.Contract.Hex(),
		Generation:     generation,
		ActiveTasks:    active,
		CompletedToday: completed,
		CurrentStreak:  streak,
		PendingReward:  bigString(pending),
		LifetimeTotal:  bigString(lifetime),
	}
}

// SnapshotFailed is emitted when a refresh fails for the current subject.
type SnapshotFailed struct {
	sharedDomain.BaseEvent
	Wallet     string `json:"wallet"`
	Contract   string `json:"contract"`
	Generation uint64 `json:"generation"`
	Error      string `json:"error"`
}

// NewSnapshotFailed creates a SnapshotFailed event.
func NewSnapshotFailed(s Subject, generation uint64, err error) *SnapshotFailed {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &SnapshotFailed{
		BaseEvent:  sharedDomain.NewBaseEvent(s.String(), aggregateType, RoutingKeySnapshotFailed),
		Wallet:     s.Wallet.Hex(),
		Contract:   s.Contract.Hex(),
		Generation: generation,
		Error:      msg,
	}
}

// TransactionConfirmed is emitted after a write transaction is mined successfully.
type TransactionConfirmed struct {
	sharedDomain.BaseEvent
	Wallet        string `json:"wallet"`
	Contract      string `json:"contract"`
	Action        string `json:"action"`
	TaskID        string `json:"task_id,omitempty"`
	TransactionID string `json:"transaction_id"`
	BlockNumber   uint64 `json:"block_number"`
}

// NewTransactionConfirmed creates a TransactionConfirmed event.
func NewTransactionConfirmed(s Subject, action, taskID string, receipt *Receipt) *TransactionConfirmed {
	e := &TransactionConfirmed{
		BaseEvent: sharedDomain.NewBaseEvent(s.String(), aggregateType, RoutingKeyTransactionConfirmed),
		Wallet:    s.Wallet.Hex(),
		Contract:  s.Contract.Hex(),
		Action:    action,
		TaskID:    taskID,
	}
	if receipt != nil {
		e.TransactionID = receipt.TransactionID.Hex()
		e.BlockNumber = receipt.BlockNumber
	}
	return e
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
