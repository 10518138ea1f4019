package calc

import (
	"github.com/zintix-labs/chainspin/spec"
)

// WinningLine 描述一條中獎線。
type WinningLine struct {
	Line    int              `json:"line"`    // payline index
	Pattern [spec.Columns]int `json:"pattern"` // 每輪一個 row index
	SymID   int16            `json:"sym_id"`  // 中獎符號（符號索引）
	Count   int              `json:"count"`   // 連線數（3/4/5）
	Payout  int64            `json:"payout"`  // betPerLine * 倍數（micro）
}

// Idx 回傳盤面扁平索引（盤面以 reel 為主序存儲）。
func Idx(reel, row int) int { return reel*spec.Rows + row }

// EvaluateLines 依線下注規則計算盤面分數。
//
// 規則：
//   - 每條線從 reel 0 起算，連續同符號的串才計分（中斷即停）。
//   - 串長 >= 3 才算中獎；派彩 = betPerLine * 賠付表[符號][串長]。
//   - 不做 wild 代任：賠付表只有純計數語意，wild 視為普通符號。
//   - 各線獨立計分；同一符號可同時在多條線上中獎。
//
// 純函式：相同輸入必得相同輸出，離線可用（provably-fair 驗證路徑）。
func EvaluateLines(grid []int16, cfg *spec.MachineConfig, betPerLine int64, paylines int) ([]WinningLine, int64) {
	if paylines > len(cfg.Paylines) {
		paylines = len(cfg.Paylines)
	}

	// 局部快取
	payFlat := cfg.PayTableFlat
	payIdx := cfg.PayTableIndex

	var wins []WinningLine
	var total int64

	// 逐線
	for lineIdx := 0; lineIdx < paylines; lineIdx++ {
		line := cfg.Paylines[lineIdx]

		// 首格為基準符號
		first := grid[Idx(0, line[0])]
		run := 1

		// 主迴圈：從第二輪開始，中斷即停
		for reel := 1; reel < spec.Columns; reel++ {
			if grid[Idx(reel, line[reel])] != first {
				break
			}
			run++
		}

		if run < 3 {
			continue // 下一線
		}

		mult := payFlat[payIdx[first]+(run-1)]
		if mult == 0 {
			// 該符號在此串長無賠付設定
			continue
		}

		w := WinningLine{
			Line:   lineIdx,
			SymID:  first,
			Count:  run,
			Payout: betPerLine * mult,
		}
		copy(w.Pattern[:], line)
		wins = append(wins, w)
		total += w.Payout
	}
	return wins, total
}
