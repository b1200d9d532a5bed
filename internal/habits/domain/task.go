package domain

import (
	"errors"
	"math/big"
	"strings"
	"time"
)

var (
	ErrInvalidTaskID = errors.New("invalid task id")
	ErrEmptyTaskName = errors.New("task name cannot be empty")
)

// maxTaskID bounds task ids to the 128-bit range the ledger allocates from.
var maxTaskID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// TaskID identifies a task on a single user contract.
type TaskID struct {
	v *big.Int
}

// NewTaskID returns a TaskID for a small integer.
func NewTaskID(v uint64) TaskID {
	return TaskID{v: new(big.Int).SetUint64(v)}
}

// TaskIDFromBig validates and copies a ledger-supplied id.
func TaskIDFromBig(v *big.Int) (TaskID, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(maxTaskID) > 0 {
		return TaskID{}, ErrInvalidTaskID
	}
	return TaskID{v: new(big.Int).Set(v)}, nil
}

// ParseTaskID parses a decimal task id.
func ParseTaskID(s string) (TaskID, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return TaskID{}, ErrInvalidTaskID
	}
	return TaskIDFromBig(v)
}

// Big returns a copy of the id as a big.Int.
func (id TaskID) Big() *big.Int {
	if id.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(id.v)
}

// String returns the decimal form, which is also the annotation key.
func (id TaskID) String() string {
	if id.v == nil {
		return "0"
	}
	return id.v.String()
}

// Cmp compares two ids numerically.
func (id TaskID) Cmp(other TaskID) int {
	return id.Big().Cmp(other.Big())
}

// Task is a habit as recorded by the ledger. Only Active changes after creation.
type Task struct {
	ID        TaskID
	Name      string
	Active    bool
	CreatedAt time.Time
}

// ValidateTaskName trims and checks a name before it is submitted.
func ValidateTaskName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyTaskName
	}
	return name, nil
}

// CompletionFact is the ledger's last completed day for one task.
type CompletionFact struct {
	TaskID           TaskID
	LastCompletedDay DayNumber
}

// IsCompletedOn reports whether the task was completed on exactly day.
// A completion from any other day, earlier or later, does not count.
func (f CompletionFact) IsCompletedOn(day DayNumber) bool {
	return f.LastCompletedDay == day
}
