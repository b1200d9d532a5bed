// Package ledger adapts the KeepUp smart contracts to the habits domain ports.
package ledger

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method and event names.
const (
	methodUserTasks     = "getUserTasks"
	methodTaskStatus    = "getTaskStatus"
	methodStreak        = "streak"
	methodLongestStreak = "longestStreak"
	methodDailyReward   = "dailyReward"
	methodBonusPercent  = "getBonusPercent"
	methodLastClaimDay  = "lastClaimDay"
	methodAddTask       = "addTask"
	methodCompleteTask  = "completeTask"
	methodRemoveTask    = "removeTask"
	methodClaimReward   = "claimReward"
	methodUserContracts = "getUserContracts"
	eventRewardClaimed  = "RewardClaimed"
)

var (
	//go:embed abi/KeepUp.json
	keepUpABIJSON []byte

	//go:embed abi/KeepUpFactory.json
	factoryABIJSON []byte

	keepUpABI  = mustParseABI("KeepUp", keepUpABIJSON)
	factoryABI = mustParseABI("KeepUpFactory", factoryABIJSON)
)

// KeepUpABI returns the embedded KeepUp contract ABI.
func KeepUpABI() abi.ABI { return keepUpABI }

// FactoryABI returns the embedded KeepUpFactory contract ABI.
func FactoryABI() abi.ABI { return factoryABI }

func mustParseABI(name string, raw []byte) abi.ABI {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("ledger: invalid embedded %s ABI: %v", name, err))
	}
	return parsed
}
