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

package api

import (
	"log/slog"
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	v1 "github.com/zintix-labs/chainspin/server/api/v1"
	"github.com/zintix-labs/chainspin/server/netsvr"
	"github.com/zintix-labs/chainspin/server/netsvr/middleware"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerIndex(svr)                // 2. 註冊主頁
	return registerV1API(svr, sCfg)   // 3. 註冊 v1 api
}

// 註冊 middleware
//
// request id 與 panic recover 直接掛 chi 的實作，不另外包一層。
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(chimid.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(chimid.Recoverer)
	svr.Use(middleware.Compression)
}

// 註冊主頁
func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("chainspin api: see /v1/state, /v1/config, /v1/report\n"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	sp, err := v1.NewSpinHandler(sCfg)
	if err != nil {
		return err
	}
	st, err := v1.NewStateHandler(sCfg.Engine)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Post("/spin", sp.Spin)
		vOne.Get("/spin/{id}", sp.GetSpin)
		vOne.Get("/pending", sp.Pending)

		vOne.Post("/autospin", sp.StartAutoSpin)
		vOne.Post("/autospin/stop", sp.StopAutoSpin)
		vOne.Post("/reset", sp.Reset)

		vOne.Get("/state", st.State)
		vOne.Get("/config", st.Config)
		vOne.Get("/report", st.Report)
		vOne.Get("/balance", st.Balance)
	})
	return nil
}
