package services

import (
	"math/big"

	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

var hundred = big.NewInt(100)

// ComputePending predicts what claimReward would pay out right now.
// It returns zero when the last claim happened on currentDay (strict equality,
// a future-dated claim day does not block). Otherwise it returns
// dailyReward * (100 + bonusPercent) / 100, multiplying before the floor
// division so the prediction matches the ledger's integer arithmetic.
func ComputePending(dailyReward *big.Int, bonusPercent uint64, lastClaimDay, currentDay domain.DayNumber) *big.Int {
	if lastClaimDay == currentDay || dailyReward == nil || dailyReward.Sign() <= 0 {
		return new(big.Int)
	}
	factor := new(big.Int).Add(hundred, new(big.Int).SetUint64(bonusPercent))
	amount := new(big.Int).Mul(dailyReward, factor)
	return amount.Quo(amount, hundred)
}
