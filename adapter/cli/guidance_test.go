package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/habits/infrastructure/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuidance(t *testing.T) {
	for _, err := range []error{
		domain.ErrWalletNotConnected,
		domain.ErrNoDeployment,
		domain.ErrNothingToClaim,
		commands.ErrActionInFlight,
		ledger.ErrNoSigner,
	} {
		t.Run(err.Error(), func(t *testing.T) {
			hint, ok := Guidance(fmt.Errorf("wrapped: %w", err))
			assert.True(t, ok)
			assert.NotEmpty(t, hint)
		})
	}

	t.Run("other errors have no guidance", func(t *testing.T) {
		_, ok := Guidance(domain.ErrLedgerUnavailable)
		assert.False(t, ok)
	})
}

func TestHandleError(t *testing.T) {
	t.Run("prints guidance and swallows the error", func(t *testing.T) {
		var buf bytes.Buffer
		err := HandleError(&buf, "claim reward", domain.ErrNothingToClaim)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Nothing to claim today")
	})

	t.Run("wraps other errors", func(t *testing.T) {
		var buf bytes.Buffer
		err := HandleError(&buf, "claim reward", domain.ErrTransactionReverted)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
		assert.Contains(t, err.Error(), "failed to claim reward")
		assert.Empty(t, buf.String())
	})

	t.Run("nil is nil", func(t *testing.T) {
		assert.NoError(t, HandleError(&bytes.Buffer{}, "x", nil))
	})
}

func TestParseCategoryFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Category
		wantErr bool
	}{
		{"", "", false},
		{"fitness", domain.CategoryFitness, false},
		{"Social", domain.CategorySocial, false},
		{"uncategorized", domain.CategoryUncategorized, false},
		{" UNCATEGORIZED ", domain.CategoryUncategorized, false},
		{"chores", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategoryFilter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApp_Subject(t *testing.T) {
	ctx := context.Background()
	ready := domain.Subject{
		Wallet:   common.HexToAddress("0x01"),
		Contract: common.HexToAddress("0x02"),
	}

	t.Run("no resolver means no wallet", func(t *testing.T) {
		a := NewApp(nil, nil, nil, nil, nil, nil, nil, nil)
		_, err := a.Subject(ctx)
		assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
	})

	t.Run("resolves once", func(t *testing.T) {
		calls := 0
		a := NewApp(nil, nil, nil, nil, nil, nil, nil, nil)
		a.SetSubjectResolver(func(context.Context) (domain.Subject, error) {
			calls++
			return ready, nil
		})

		for i := 0; i < 2; i++ {
			got, err := a.Subject(ctx)
			require.NoError(t, err)
			assert.Equal(t, ready, got)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("reports a missing deployment", func(t *testing.T) {
		a := NewApp(nil, nil, nil, nil, nil, nil, nil, nil)
		a.SetSubjectResolver(func(context.Context) (domain.Subject, error) {
			return domain.Subject{Wallet: ready.Wallet}, nil
		})
		_, err := a.Subject(ctx)
		assert.ErrorIs(t, err, domain.ErrNoDeployment)
	})

	t.Run("retries after a failure", func(t *testing.T) {
		calls := 0
		a := NewApp(nil, nil, nil, nil, nil, nil, nil, nil)
		a.SetSubjectResolver(func(context.Context) (domain.Subject, error) {
			calls++
			if calls == 1 {
				return domain.Subject{}, errors.New("rpc down")
			}
			return ready, nil
		})

		_, err := a.Subject(ctx)
		require.Error(t, err)
		_, err = a.Subject(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}
