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

package store

import (
	"context"
	"sync"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/normalizer"
)

// MemoryStore keeps documents in process memory. Documents are stored in raw form so a
// Load after Save goes through the same normalization as any other store. Loaded maps are
// shared and must not be mutated.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]map[string]interface{}
	schedules map[string]schedulemodel.Schedule
	saves     map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]map[string]interface{}),
		schedules: make(map[string]schedulemodel.Schedule),
		saves:     make(map[string]int),
	}
}

func (s *MemoryStore) Load(ctx context.Context, tenant string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[tenant]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (s *MemoryStore) Save(ctx context.Context, tenant string, settings model.Settings) error {
	raw := normalizer.SettingsToRaw(settings)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[tenant] = raw
	s.saves[tenant]++
	return nil
}

// PutRaw stores a document as given, bypassing the canonical shape. Used to seed legacy data.
func (s *MemoryStore) PutRaw(tenant string, raw map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[tenant] = raw
}

// Saves returns how many times the tenant's document was saved.
func (s *MemoryStore) Saves(tenant string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[tenant]
}

func (s *MemoryStore) LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if schedule, ok := s.schedules[tenant]; ok {
		return schedule, nil
	}
	return emptySchedule(), nil
}

func (s *MemoryStore) SaveSchedule(ctx context.Context, tenant string, schedule schedulemodel.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[tenant] = schedule
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
