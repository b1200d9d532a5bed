package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/keepup/internal/habits/application/refresh"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	id := domain.NewTaskID(4)

	newHandler := func(f *fixture) *CompleteTaskHandler {
		return NewCompleteTaskHandler(f.submitter, f.refresher, f.proofs, f.locks, domain.FixedClock{At: testNow}, nil)
	}

	t.Run("records a proof after confirmation", func(t *testing.T) {
		f := newFixture(testSubject)
		f.writer.On("CompleteTask", mock.Anything, "4").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(confirmed(), nil)
		f.expectRefresh()
		f.proofs.On("Add", mock.Anything, "4", "ipfs://bafy/proof.jpg", "proof.jpg", testNow).Return(nil)

		result, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id, ProofURL: "ipfs://bafy/proof.jpg", ProofFile: "proof.jpg"})

		require.NoError(t, err)
		assert.True(t, result.ProofRecorded)
		f.proofs.AssertExpectations(t)
		f.writer.AssertExpectations(t)
	})

	t.Run("without proof", func(t *testing.T) {
		f := newFixture(testSubject)
		f.writer.On("CompleteTask", mock.Anything, "4").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(confirmed(), nil)
		f.expectRefresh()

		result, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id})

		require.NoError(t, err)
		assert.False(t, result.ProofRecorded)
		f.proofs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refresh failure still reports success", func(t *testing.T) {
		f := newFixture(testSubject)
		f.writer.On("CompleteTask", mock.Anything, "4").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(confirmed(), nil)
		f.refresher.On("Refresh", mock.Anything, refresh.TriggerTransactionConfirmed).Return(nil, domain.ErrLedgerUnavailable)

		result, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id})

		require.NoError(t, err)
		assert.Nil(t, result.Snapshot)
		assert.Equal(t, uint64(42), result.Receipt.BlockNumber)
	})

	t.Run("confirmation errors propagate", func(t *testing.T) {
		f := newFixture(testSubject)
		f.writer.On("CompleteTask", mock.Anything, "4").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(nil, context.DeadlineExceeded)

		_, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, f.locks.isHeld(LockKey{TaskID: "4", Action: ActionComplete}))
	})

	t.Run("other tasks are not blocked by an in-flight completion", func(t *testing.T) {
		f := newFixture(testSubject)
		release, _ := f.locks.Acquire(LockKey{TaskID: "4", Action: ActionComplete})
		defer release()
		f.writer.On("CompleteTask", mock.Anything, "5").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(confirmed(), nil)
		f.expectRefresh()

		_, busy := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id})
		_, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: domain.NewTaskID(5)})

		assert.ErrorIs(t, busy, ErrActionInFlight)
		assert.NoError(t, err)
	})

	t.Run("proof store failure is logged only", func(t *testing.T) {
		f := newFixture(testSubject)
		f.writer.On("CompleteTask", mock.Anything, "4").Return(testTx, nil)
		f.writer.On("AwaitConfirmation", mock.Anything, testTx).Return(confirmed(), nil)
		f.expectRefresh()
		f.proofs.On("Add", mock.Anything, "4", "ipfs://x", "", testNow).Return(errors.New("disk full"))

		result, err := newHandler(f).Handle(ctx, CompleteTaskCommand{TaskID: id, ProofURL: "ipfs://x"})

		require.NoError(t, err)
		assert.False(t, result.ProofRecorded)
	})
}
