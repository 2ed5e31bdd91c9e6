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

package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

const readinessTimeout = 3 * time.Second

// Pinger is the dependency whose reachability decides readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) error
}

// HealthCheckService reports ready once the settings store answers a ping.
type HealthCheckService struct {
	store Pinger
}

var (
	instance HealthCheckServiceInterface
	initMu   sync.RWMutex
)

func NewHealthCheckService(store Pinger) *HealthCheckService {
	return &HealthCheckService{store: store}
}

// InitHealthCheckService registers the service returned by GetHealthCheckService.
func InitHealthCheckService(svc HealthCheckServiceInterface) {
	initMu.Lock()
	defer initMu.Unlock()
	instance = svc
}

// GetHealthCheckService returns the registered service. Before registration every
// readiness check fails.
func GetHealthCheckService() HealthCheckServiceInterface {
	initMu.RLock()
	defer initMu.RUnlock()
	if instance == nil {
		return &HealthCheckService{}
	}
	return instance
}

func (h *HealthCheckService) CheckReadiness(ctx context.Context) error {
	if log.GetLogger() == nil {
		return errors.New("logger not initialized")
	}
	if h.store == nil {
		return errors.New("settings store not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return errors.Wrap(err, "settings store connectivity check failed")
	}
	return nil
}
