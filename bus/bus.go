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

// Package bus 提供引擎與 listener（UI、分析、記錄器）之間的
// 同進程 typed pub/sub。
//
// 派發語意（合約的一部分，有測試釘住）：
//   - 同步派發：handler 在 Emit 的呼叫堆疊上執行，不排隊、不批次。
//   - 依註冊順序呼叫。
//   - 對「派發當下的 handler 快照」迭代：派發中 unsubscribe 不會 panic、
//     也不會跳過其他 handler；被移除的 handler 仍可能收到本次事件
//     （下一次 Emit 起保證收不到）。
package bus

import "sync"

// Handler 處理單一事件。
type Handler func(Event)

type entry struct {
	id int
	fn Handler
}

// Bus 是事件匯流排。零值即可用。
type Bus struct {
	mu     sync.Mutex
	subs   map[EventType][]entry
	nextID int
}

func New() *Bus {
	return &Bus{subs: map[EventType][]entry{}}
}

// On 註冊指定事件型別的 handler，回傳取消函式（可安全重複呼叫）。
func (b *Bus) On(t EventType, h Handler) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = map[EventType][]entry{}
	}
	id := b.nextID
	b.nextID++
	b.subs[t] = append(b.subs[t], entry{id: id, fn: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			lst := b.subs[t]
			for i, e := range lst {
				if e.id == id {
					// copy-on-remove：正在派發的快照不受影響
					nl := make([]entry, 0, len(lst)-1)
					nl = append(nl, lst[:i]...)
					nl = append(nl, lst[i+1:]...)
					b.subs[t] = nl
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Emit 同步派發事件給該型別的所有 handler。
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	snapshot := b.subs[e.Type()]
	b.mu.Unlock()

	// snapshot 是 copy-on-remove 維護的切片，這裡直接迭代即可
	for _, ent := range snapshot {
		ent.fn(e)
	}
}

// Len 回傳指定型別目前的 handler 數（觀測/測試用）。
func (b *Bus) Len(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[t])
}
