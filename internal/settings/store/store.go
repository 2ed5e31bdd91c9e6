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
	"fmt"
	"strings"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// Store persists one settings document and one schedule snapshot per tenant.
// Load returns the raw document so that the normalizer sees exactly what was stored; a
// tenant with nothing stored yet gets a nil map and no error.
type Store interface {
	Load(ctx context.Context, tenant string) (map[string]interface{}, error)
	Save(ctx context.Context, tenant string, settings model.Settings) error
	LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error)
	SaveSchedule(ctx context.Context, tenant string, schedule schedulemodel.Schedule) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewStore opens the store selected by the database configuration.
func NewStore(ctx context.Context, cfg config.DatabaseConfig, serviceHome string) (Store, error) {
	logger := log.GetLogger()
	switch strings.ToLower(cfg.Type) {
	case "", constants.StoreTypeMemory:
		logger.Info("Using in-memory settings store")
		return NewMemoryStore(), nil
	case constants.StoreTypePostgres:
		logger.Info("Using PostgreSQL settings store", log.String("host", cfg.DataSource.Hostname))
		return OpenPostgresStore(cfg, serviceHome)
	case constants.StoreTypeMongoDB:
		logger.Info("Using MongoDB settings store", log.String("database", cfg.MongoDB.Database))
		return OpenMongoStore(ctx, cfg.MongoDB)
	}
	return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
}

func emptySchedule() schedulemodel.Schedule {
	return schedulemodel.Schedule{
		Staff:       []model.StaffMember{},
		Assignments: map[string]map[string]model.ShiftType{},
	}
}
