package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/httperr"
	"github.com/zintix-labs/chainspin/spec"
)

// ============================================================
// ** StateHandler **
// ============================================================

type StateHandler struct {
	eng *chainspin.Engine
}

func NewStateHandler(eng *chainspin.Engine) (*StateHandler, error) {
	if eng == nil {
		return nil, errs.NewFatal("build state handler error: engine is nil")
	}
	return &StateHandler{eng: eng}, nil
}

// State 回傳完整 session 快照（UI 輪詢入口）。
func (h *StateHandler) State(w http.ResponseWriter, q *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.eng.GetState()); err != nil {
		httperr.Errs(w, err)
	}
}

// machineInfo 是 /v1/config 的回應：只給呈現層需要的欄位，
// 不回整份 MachineConfig（滾輪帶屬於合約側資料）。
type machineInfo struct {
	AppID       uint64              `json:"app_id"`
	ChainID     string              `json:"chain_id"`
	RTPTarget   float64             `json:"rtp_target"`
	MinBet      int64               `json:"min_bet"`
	MaxBet      int64               `json:"max_bet"`
	MaxPaylines int                 `json:"max_paylines"`
	Symbols     []string            `json:"symbols"`
	Paylines    [][]int             `json:"paylines"`
	WinTiers    spec.WinTierSetting `json:"win_tiers"`
}

// Config 回傳機台設定摘要。
func (h *StateHandler) Config(w http.ResponseWriter, q *http.Request) {
	cfg := h.eng.Config()
	if cfg == nil {
		httperr.Errs(w, errs.NewCode(errs.NotInitialized, "engine not initialized"))
		return
	}
	info := machineInfo{
		AppID:       cfg.AppID,
		ChainID:     cfg.ChainID,
		RTPTarget:   cfg.RTPTarget,
		MinBet:      cfg.MinBet,
		MaxBet:      cfg.MaxBet,
		MaxPaylines: cfg.MaxPaylines,
		Symbols:     cfg.SymbolUsedStr,
		Paylines:    cfg.Paylines,
		WinTiers:    cfg.WinTiers,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		httperr.Errs(w, err)
	}
}

// Report 回傳 session 統計（RTP、命中率、級距分布）。
func (h *StateHandler) Report(w http.ResponseWriter, q *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.eng.Report().Summary()); err != nil {
		httperr.Errs(w, err)
	}
}

// Balance 強制刷新並回傳鏈上餘額。
func (h *StateHandler) Balance(w http.ResponseWriter, q *http.Request) {
	ctx, cancel := context.WithTimeout(q.Context(), 5*time.Second)
	defer cancel()

	bal, err := h.eng.Balance(ctx)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	snap := h.eng.GetState()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{
		"balance":   bal,
		"reserved":  snap.Reserved,
		"available": snap.Available(),
	})
}
