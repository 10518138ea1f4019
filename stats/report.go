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
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// CI 信賴區間
type CI struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// SessionReport 彙總一個 session 的結算統計。
//
// 引擎每結算一筆 spin 就 Add 一次；Summary() 產出報表。
// 併發安全：結算可能來自多條 spin pipeline。
type SessionReport struct {
	mu sync.Mutex

	rounds     int
	totalBet   int64
	totalWin   int64
	winRounds  int
	tierCount  [5]int    // index = Tier
	multSum    float64   // 每局 winnings/bet 倍數和
	multSqSum  float64   // 平方和（CI 用）
	maxWin     int64
	maxMult    float64
}

func NewSessionReport() *SessionReport {
	return &SessionReport{}
}

// Add 累積一筆結算。
func (r *SessionReport) Add(s Settle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds++
	r.totalBet += s.TotalBet
	r.totalWin += s.Winnings
	if s.IsWin {
		r.winRounds++
	}
	if int(s.Tier) < len(r.tierCount) {
		r.tierCount[s.Tier]++
	}
	r.multSum += s.Multiple
	r.multSqSum += s.Multiple * s.Multiple
	if s.Winnings > r.maxWin {
		r.maxWin = s.Winnings
	}
	if s.Multiple > r.maxMult {
		r.maxMult = s.Multiple
	}
}

// Summary 是 SessionReport 的不可變輸出。
type Summary struct {
	Rounds    int     `json:"rounds"`
	TotalBet  int64   `json:"total_bet"`  // micro
	TotalWin  int64   `json:"total_win"`  // micro
	WinRounds int     `json:"win_rounds"`
	HitRate   float64 `json:"hit_rate"`
	Rtp       float64 `json:"rtp"`
	RtpCI     CI      `json:"rtp_ci"` // 95% 信賴區間
	MaxWin    int64   `json:"max_win"`
	MaxMult   float64 `json:"max_mult"`
	TierCount [5]int  `json:"tier_count"` // none/small/medium/large/jackpot
}

// Summary 計算報表。
//
// RTP 的 CI 用每局倍數的樣本變異 + 常態近似：
//
//	rtp_hat ± z * sd(mult) / sqrt(n)
//
// 樣本少時區間只具參考性（沙盒/模擬的局數通常足夠大）。
func (r *SessionReport) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Summary{
		Rounds:    r.rounds,
		TotalBet:  r.totalBet,
		TotalWin:  r.totalWin,
		WinRounds: r.winRounds,
		MaxWin:    r.maxWin,
		MaxMult:   r.maxMult,
		TierCount: r.tierCount,
	}
	if r.rounds == 0 {
		return out
	}
	n := float64(r.rounds)
	out.HitRate = float64(r.winRounds) / n
	if r.totalBet > 0 {
		out.Rtp = float64(r.totalWin) / float64(r.totalBet)
	}

	// 每局倍數的樣本統計
	mean := r.multSum / n
	variance := r.multSqSum/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	se := math.Sqrt(variance / n)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.975)
	out.RtpCI = CI{Lo: mean - z*se, Hi: mean + z*se}
	return out
}
