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

package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const payload = "chainspin chainspin chainspin chainspin chainspin chainspin"

func echoHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status != http.StatusNoContent {
			_, _ = io.WriteString(w, payload)
		}
	})
}

func TestCompressionGzip(t *testing.T) {
	srv := Compression(echoHandler(http.StatusOK))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if enc := rec.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("encoding = %q", enc)
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	out, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(out) != payload {
		t.Fatalf("payload mismatch: %q", out)
	}
}

func TestCompressionZstd(t *testing.T) {
	srv := Compression(echoHandler(http.StatusOK))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "zstd, gzip")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// zstd 優先於 gzip
	if enc := rec.Header().Get("Content-Encoding"); enc != "zstd" {
		t.Fatalf("encoding = %q", enc)
	}
	zr, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(out) != payload {
		t.Fatalf("payload mismatch: %q", out)
	}
}

func TestCompressionPassthrough(t *testing.T) {
	srv := Compression(echoHandler(http.StatusOK))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if enc := rec.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("encoding = %q, want none", enc)
	}
	if rec.Body.String() != payload {
		t.Fatalf("payload mismatch: %q", rec.Body.String())
	}
}

func TestCompressionNoBodyStatus(t *testing.T) {
	srv := Compression(echoHandler(http.StatusNoContent))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	// 204 不得帶壓縮 footer 或 Content-Encoding
	if rec.Body.Len() != 0 {
		t.Fatalf("204 body = %q", rec.Body.Bytes())
	}
	if enc := rec.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("encoding = %q", enc)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	srv := AccessLog(log)(echoHandler(http.StatusTeapot))
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, "http.access") {
		t.Fatalf("missing access entry: %q", out)
	}
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/v1/state") {
		t.Fatalf("missing fields: %q", out)
	}
	// 4xx 走 WARN
	if !strings.Contains(out, "level=WARN") {
		t.Fatalf("level not warn: %q", out)
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	// request id 由 chi 的 RequestID 塞進 context，access log 取出來記
	srv := chimid.RequestID(AccessLog(log)(echoHandler(http.StatusOK)))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, "req_id=") || strings.Contains(out, `req_id=""`) {
		t.Fatalf("request id missing: %q", out)
	}
}

func TestAccessLogNilLogger(t *testing.T) {
	srv := AccessLog(nil)(echoHandler(http.StatusOK))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
