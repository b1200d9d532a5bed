package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/convert"
)

// ErrUnsupportedSchema is returned when a task listing has an output shape
// no decoder understands.
var ErrUnsupportedSchema = errors.New("unsupported task schema")

// taskDecoder turns unpacked getUserTasks outputs into domain tasks.
type taskDecoder interface {
	decode(out []any) ([]domain.Task, error)
}

// taskDecoderFor picks a decoder from the method's output components.
// A single tuple array with named components decodes by name; four parallel
// arrays decode by position.
func taskDecoderFor(method abi.Method) (taskDecoder, error) {
	outs := method.Outputs
	switch {
	case len(outs) == 1 && outs[0].Type.T == abi.SliceTy &&
		outs[0].Type.Elem != nil && outs[0].Type.Elem.T == abi.TupleTy &&
		hasNamedComponents(*outs[0].Type.Elem, "id", "name"):
		return namedTupleDecoder{}, nil
	case len(outs) == 4 && allSlices(outs):
		return positionalDecoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchema, method.Sig)
	}
}

func hasNamedComponents(t abi.Type, required ...string) bool {
	names := make(map[string]struct{}, len(t.TupleRawNames))
	for _, n := range t.TupleRawNames {
		if n == "" {
			return false
		}
		names[n] = struct{}{}
	}
	for _, r := range required {
		if _, ok := names[r]; !ok {
			return false
		}
	}
	return true
}

func allSlices(args abi.Arguments) bool {
	for _, a := range args {
		if a.Type.T != abi.SliceTy {
			return false
		}
	}
	return true
}

// taskTuple mirrors the KeepUp.Task struct. Field order follows the ABI.
type taskTuple struct {
	Id        *big.Int
	Name      string
	Active    bool
	CreatedAt *big.Int
}

type namedTupleDecoder struct{}

func (namedTupleDecoder) decode(out []any) (tasks []domain.Task, err error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: expected 1 output, got %d", ErrUnsupportedSchema, len(out))
	}
	defer func() {
		// ConvertType panics on shape mismatch.
		if r := recover(); r != nil {
			tasks, err = nil, fmt.Errorf("%w: %v", ErrUnsupportedSchema, r)
		}
	}()

	rows := *abi.ConvertType(out[0], new([]taskTuple)).(*[]taskTuple)
	tasks = make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		task, err := newTask(row.Id, row.Name, row.Active, row.CreatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

type positionalDecoder struct{}

func (positionalDecoder) decode(out []any) ([]domain.Task, error) {
	if len(out) != 4 {
		return nil, fmt.Errorf("%w: expected 4 outputs, got %d", ErrUnsupportedSchema, len(out))
	}
	ids, _ := out[0].([]*big.Int)
	names, _ := out[1].([]string)
	active, _ := out[2].([]bool)
	created, _ := out[3].([]*big.Int)

	tasks := make([]domain.Task, 0, len(ids))
	for i, id := range ids {
		var (
			name string
			act  bool
			at   *big.Int
		)
		if i < len(names) {
			name = names[i]
		}
		if i < len(active) {
			act = active[i]
		}
		if i < len(created) {
			at = created[i]
		}
		task, err := newTask(id, name, act, at)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// newTask builds a domain task. An id outside the task id range rejects the
// listing; an unparseable creation time defaults to zero.
func newTask(id *big.Int, name string, active bool, createdAt *big.Int) (domain.Task, error) {
	taskID, err := domain.TaskIDFromBig(id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: task id %v out of range", ErrUnsupportedSchema, id)
	}
	secs := convert.Uint64ToInt64Clamped(convert.BigToUint64Clamped(createdAt))
	return domain.Task{
		ID:        taskID,
		Name:      name,
		Active:    active,
		CreatedAt: time.Unix(secs, 0).UTC(),
	}, nil
}
