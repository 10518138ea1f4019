package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/server/httperr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

// ============================================================
// ** SpinHandler **
// ============================================================

type SpinHandler struct {
	eng     *chainspin.Engine
	timeout time.Duration
}

func NewSpinHandler(sCfg *svrcfg.SvrCfg) (*SpinHandler, error) {
	if sCfg.Engine == nil {
		return nil, errs.NewFatal("build spin handler error: engine is nil")
	}
	return &SpinHandler{eng: sCfg.Engine, timeout: sCfg.SpinTimeout}, nil
}

// SpinRequest 是 POST /v1/spin 的 body。金額一律 micro-units。
type SpinRequest struct {
	BetPerLine int64 `json:"bet_per_line"`
	Paylines   int   `json:"paylines"`
}

// SpinAccepted 是 spin 入列成功的回應；結果之後由輪詢 /v1/spin/{id}
// 或 /v1/state 取得。
type SpinAccepted struct {
	SpinID string `json:"spin_id"`
	Status string `json:"status"`
}

func (c *SpinHandler) Spin(w http.ResponseWriter, q *http.Request) {
	// 1. 請求結構體校驗
	var req SpinRequest
	if err := json.NewDecoder(q.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 2. 請求解析完成，設置超時 context（只涵蓋同步的驗證/入列階段）
	ctx, cancel := context.WithTimeout(q.Context(), c.timeout)
	defer cancel()

	// 3. 開始 Spin
	id, err := c.eng.Spin(ctx, req.BetPerLine, req.Paylines)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(SpinAccepted{SpinID: id, Status: "PENDING"})
}

// GetSpin 查單筆 spin 目前的快照。
func (c *SpinHandler) GetSpin(w http.ResponseWriter, q *http.Request) {
	id := chi.URLParam(q, "id")
	spin, ok := c.eng.Store().GetSpin(id)
	if !ok {
		http.Error(w, "spin not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(spin); err != nil {
		httperr.Errs(w, err)
	}
}

// Pending 列出所有未結算的 spin。
func (c *SpinHandler) Pending(w http.ResponseWriter, q *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.eng.PendingSpins()); err != nil {
		httperr.Errs(w, err)
	}
}

// AutoSpinRequest 是 POST /v1/autospin 的 body。
type AutoSpinRequest struct {
	Count      int   `json:"count"`
	BetPerLine int64 `json:"bet_per_line"`
	Paylines   int   `json:"paylines"`
}

func (c *SpinHandler) StartAutoSpin(w http.ResponseWriter, q *http.Request) {
	var req AutoSpinRequest
	if err := json.NewDecoder(q.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(q.Context(), c.timeout)
	defer cancel()

	id, err := c.eng.StartAutoSpin(ctx, req.Count, req.BetPerLine, req.Paylines)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(SpinAccepted{SpinID: id, Status: "PENDING"})
}

func (c *SpinHandler) StopAutoSpin(w http.ResponseWriter, q *http.Request) {
	c.eng.StopAutoSpin()
	w.WriteHeader(http.StatusNoContent)
}

// Reset 清空 session 狀態；進行中的 spin 遺棄處理。
func (c *SpinHandler) Reset(w http.ResponseWriter, q *http.Request) {
	c.eng.Reset()
	w.WriteHeader(http.StatusNoContent)
}
