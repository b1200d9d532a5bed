package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
	"github.com/felixgeelhaar/keepup/internal/habits/infrastructure/ledger"
)

var guidance = []struct {
	err  error
	hint string
}{
	{domain.ErrWalletNotConnected, "No wallet configured. Set KEEPUP_WALLET_ADDRESS or KEEPUP_PRIVATE_KEY."},
	{domain.ErrNoDeployment, "No KeepUp contract is deployed for this wallet yet. Deploy one from the factory, or set KEEPUP_CONTRACT_ADDRESS."},
	{domain.ErrNothingToClaim, "Nothing to claim today. Complete all of today's tasks first, or come back tomorrow."},
	{commands.ErrActionInFlight, "That action is already in progress. Wait for it to confirm."},
	{ledger.ErrNoSigner, "Writing to the ledger needs a signing key. Set KEEPUP_PRIVATE_KEY."},
}

// Guidance returns the hint for a precondition error.
func Guidance(err error) (string, bool) {
	for _, g := range guidance {
		if errors.Is(err, g.err) {
			return g.hint, true
		}
	}
	return "", false
}

// HandleError prints precondition errors as guidance and swallows them so the
// command exits 0. Other errors are returned wrapped with action.
func HandleError(w io.Writer, action string, err error) error {
	if err == nil {
		return nil
	}
	if hint, ok := Guidance(err); ok {
		fmt.Fprintln(w, hint)
		return nil
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// ParseCategoryFilter parses a --category flag. Empty means no filter and
// "uncategorized" selects untagged tasks.
func ParseCategoryFilter(s string) (domain.Category, error) {
	if s == "" {
		return "", nil
	}
	if strings.EqualFold(strings.TrimSpace(s), string(domain.CategoryUncategorized)) {
		return domain.CategoryUncategorized, nil
	}
	return domain.ParseCategory(s)
}
