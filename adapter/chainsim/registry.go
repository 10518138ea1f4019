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

package chainsim

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/spec"
)

var ErrDupAppID = errs.NewFatal("duplicate app id")

// Registry 收錄一組機台設定，以 app id 索引。
//
// 設定來源是一個「平坦」的 fs.FS（不允許子目錄），檔案為 YAML/JSON。
// 所有設定在 Load 時就完成解析、Init 與基本檢查，之後只讀不寫；
// 任何一個檔案有問題都會讓 Load 直接失敗（fail fast）。
type Registry struct {
	byApp map[uint64]*spec.MachineConfig
	ids   []uint64 // 穩定排序
}

// LoadRegistry 走訪 src 底下所有 YAML/JSON 機台設定並建立註冊表。
func LoadRegistry(src fs.FS) (*Registry, error) {
	if src == nil {
		return nil, errs.NewFatal("no fs provided")
	}
	r := &Registry{byApp: map[uint64]*spec.MachineConfig{}}

	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == "." {
				return nil
			}
			return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		cfg, perr := parseMachineByExt(src, path)
		if perr != nil {
			if _, ok := errs.AsErr(perr); ok {
				return perr
			}
			return errs.Wrap(perr, fmt.Sprintf("registry parse %q", path))
		}
		if cfg == nil {
			return nil // 非設定檔，略過
		}
		if _, ok := r.byApp[cfg.AppID]; ok {
			return ErrDupAppID
		}
		r.byApp[cfg.AppID] = cfg
		r.ids = append(r.ids, cfg.AppID)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "can not load machine registry")
	}
	if len(r.ids) == 0 {
		return nil, errs.NewFatal("machine registry is empty")
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	return r, nil
}

// parseMachineByExt 依副檔名解析設定；不認得的副檔名回 (nil, nil) 跳過。
func parseMachineByExt(src fs.FS, path string) (*spec.MachineConfig, error) {
	var parse func([]byte) (*spec.MachineConfig, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = spec.GetMachineConfigByYAML
	case ".json":
		parse = spec.GetMachineConfigByJSON
	default:
		return nil, nil
	}
	raw, err := fs.ReadFile(src, path)
	if err != nil {
		return nil, err
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}
	if cfg.AppID == 0 {
		return nil, errs.NewFatal(fmt.Sprintf("machine config %q missing app_id", path))
	}
	return cfg, nil
}

// Get 取出指定 app id 的機台設定。
func (r *Registry) Get(appID uint64) (*spec.MachineConfig, bool) {
	cfg, ok := r.byApp[appID]
	return cfg, ok
}

// AppIDs 回傳所有 app id（排序後的副本）。
func (r *Registry) AppIDs() []uint64 {
	return append([]uint64(nil), r.ids...)
}

// Len 回傳註冊的機台數。
func (r *Registry) Len() int { return len(r.ids) }
