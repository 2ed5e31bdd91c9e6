/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package buffer

import (
	"sort"
	"sync"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

// EditBuffer holds in-progress edits per rule id on top of the canonical list.
// Reads always prefer buffered fields over canonical ones.
type EditBuffer struct {
	mu    sync.RWMutex
	edits map[string]model.RulePatch
}

func New() *EditBuffer {
	return &EditBuffer{edits: make(map[string]model.RulePatch)}
}

// Set merges the patch into the pending edit of the id. The most recent value of a field wins.
func (b *EditBuffer) Set(id string, patch model.RulePatch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits[id] = b.edits[id].Merge(patch)
}

// Read returns the canonical rule with any buffered fields overlaid.
func (b *EditBuffer) Read(id string, canonical model.Rule) model.Rule {
	b.mu.RLock()
	patch, ok := b.edits[id]
	b.mu.RUnlock()
	if !ok {
		return canonical
	}
	return patch.Apply(canonical)
}

func (b *EditBuffer) Get(id string) (model.RulePatch, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	patch, ok := b.edits[id]
	return patch, ok
}

// Take returns the pending edit of the id and clears it.
func (b *EditBuffer) Take(id string) (model.RulePatch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	patch, ok := b.edits[id]
	delete(b.edits, id)
	return patch, ok
}

func (b *EditBuffer) Clear(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.edits, id)
}

func (b *EditBuffer) Has(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.edits[id]
	return ok
}

// IDs returns the ids with pending edits in lexical order.
func (b *EditBuffer) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.edits))
	for id := range b.edits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset drops every pending edit.
func (b *EditBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits = make(map[string]model.RulePatch)
}
