package stats

import "time"

// Settle 是一筆已結算 spin 的不可變摘要。
//
// 引擎在 spin 完成結算時產生，餵給事件（SpinCompleted）、
// 記錄器（recorder journal）與 session 統計（SessionReport）。
type Settle struct {
	SpinID    string    `json:"spin_id"`
	TotalBet  int64     `json:"total_bet"` // micro
	Winnings  int64     `json:"winnings"`  // micro
	NetProfit int64     `json:"net_profit"`
	IsWin     bool      `json:"is_win"`
	Tier      Tier      `json:"tier"`
	Multiple  float64   `json:"multiple"` // winnings / totalBet
	Block     uint64    `json:"block"`
	At        time.Time `json:"at"`
}
