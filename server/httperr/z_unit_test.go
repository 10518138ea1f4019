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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/chainspin/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusRequestTimeout},
		{"wrapped deadline", errs.Wrap(context.DeadlineExceeded, "spin"), http.StatusGatewayTimeout},
		{"invalid bet", errs.NewCode(errs.InvalidBet, "x"), http.StatusBadRequest},
		{"insufficient balance", errs.NewCode(errs.InsufficientBalance, "x"), http.StatusPaymentRequired},
		{"not initialized", errs.NewCode(errs.NotInitialized, "x"), http.StatusServiceUnavailable},
		{"timeout", errs.NewCode(errs.Timeout, "x"), http.StatusGatewayTimeout},
		{"network", errs.NewCode(errs.NetworkError, "x"), http.StatusBadGateway},
		{"transaction failed", errs.NewCode(errs.TransactionFailed, "x"), http.StatusBadGateway},
		{"contract", errs.NewCode(errs.ContractError, "x"), http.StatusBadGateway},
		{"wrapped code", errs.Wrap(errs.NewCode(errs.InvalidBet, "x"), "outer"), http.StatusBadRequest},
		{"plain warn", errs.NewWarn("x"), http.StatusBadRequest},
		{"plain fatal", errs.NewFatal("x"), http.StatusInternalServerError},
		{"foreign error", errors.New("x"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("%s: status = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestErrsWritesJSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	Errs(w, errs.NewCode(errs.InsufficientBalance, "need 5000, available 100"))

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}

	var body struct {
		Error       string `json:"error"`
		Code        string `json:"code"`
		Recoverable bool   `json:"recoverable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not json: %v", err)
	}
	if body.Code != "INSUFFICIENT_BALANCE" || !body.Recoverable || body.Error == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrsNilNoop(t *testing.T) {
	w := httptest.NewRecorder()
	Errs(w, nil)
	if w.Body.Len() != 0 || w.Code != http.StatusOK {
		t.Fatalf("nil error must not write: %d %q", w.Code, w.Body.String())
	}
}
