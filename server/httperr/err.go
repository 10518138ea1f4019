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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/chainspin/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408（請求生命週期問題）
//   - 已知遊戲錯誤碼 → 各自的語意狀態碼（見下表）
//   - 其餘依 errs 分級：Warn → 400、Fatal → 500
//
// 注意：本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
// 這樣可以避免讓核心錯誤包依賴 net/http 等傳輸層細節。
func StatusCode(err error) int {
	// 1) 先處理 context 取消/超時（即使被 wrap 也能被 errors.Is 命中）
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	// 2) 已知遊戲錯誤碼
	switch errs.CodeOf(err) {
	case errs.InvalidBet:
		return http.StatusBadRequest // 400
	case errs.InsufficientBalance:
		return http.StatusPaymentRequired // 402
	case errs.NotInitialized:
		return http.StatusServiceUnavailable // 503
	case errs.Timeout:
		return http.StatusGatewayTimeout // 504
	case errs.NetworkError, errs.TransactionFailed, errs.ContractError:
		return http.StatusBadGateway // 502
	}

	// 3) 再處理內部錯誤分級（errs.E/Wrap）
	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest // 400
	}
	return http.StatusInternalServerError // 500
}

// errBody 是錯誤回應的 wire format；Code 對外穩定，UI 依此分流。
type errBody struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
}

// Errs 把錯誤以 JSON 寫回；status code 由 StatusCode 決定。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errBody{
		Error:       err.Error(),
		Code:        errs.CodeOf(err).String(),
		Recoverable: errs.IsRecoverable(err),
	})
}

// Log 依映射後的狀態碼決定 log 等級（4xx 請求側 Warn、5xx 系統側 Error）。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	if (status >= 400) && (status < 500) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
