// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"github.com/zintix-labs/chainspin/spec"
)

// Tier 是贏分級距。級距門檻由機台設定提供（WinTierSetting），
// 不由評分器推導；沒有設定就分不出級距。
type Tier uint8

const (
	TierNone Tier = iota
	TierSmall
	TierMedium
	TierLarge
	TierJackpot
)

var tierStr = map[Tier]string{
	TierNone:    "none",
	TierSmall:   "small",
	TierMedium:  "medium",
	TierLarge:   "large",
	TierJackpot: "jackpot",
}

func (t Tier) String() string {
	if s, ok := tierStr[t]; ok {
		return s
	}
	return "unknown"
}

// TierTable 把 payout/totalBet 的倍數分級，O(1) 查詢。
type TierTable struct {
	small   float64
	medium  float64
	large   float64
	jackpot float64
}

// NewTierTable 由機台設定建表；設定已在 spec.Init 驗證過遞增性。
func NewTierTable(w spec.WinTierSetting) *TierTable {
	return &TierTable{
		small:   w.Small,
		medium:  w.Medium,
		large:   w.Large,
		jackpot: w.Jackpot,
	}
}

// Classify 依派彩與總注額回傳級距與倍數。
// payout 為 0（或 totalBet 非正）時為 TierNone。
func (t *TierTable) Classify(payout, totalBet int64) (Tier, float64) {
	if payout <= 0 || totalBet <= 0 {
		return TierNone, 0
	}
	mult := float64(payout) / float64(totalBet)
	switch {
	case mult >= t.jackpot:
		return TierJackpot, mult
	case mult >= t.large:
		return TierLarge, mult
	case mult >= t.medium:
		return TierMedium, mult
	case mult >= t.small:
		return TierSmall, mult
	default:
		return TierNone, mult
	}
}
