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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/database/client"
	"github.com/wso2/shift-settings-reconciler/internal/system/database/lock"
	"github.com/wso2/shift-settings-reconciler/internal/system/database/provider"
	"github.com/wso2/shift-settings-reconciler/internal/system/database/scripts"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

const dbType = "postgres"

// PostgresStore keeps each tenant's settings document in a JSONB column. Saves take a
// transaction-scoped advisory lock on the tenant so concurrent servers write in turn.
type PostgresStore struct {
	client client.DBClientInterface
	lock   *lock.TenantLock
}

// OpenPostgresStore connects to the configured data source and makes sure the schema exists.
func OpenPostgresStore(cfg config.DatabaseConfig, serviceHome string) (*PostgresStore, error) {
	dbClient, err := provider.NewDBProviderFor(cfg.DataSource).GetDBClient()
	if err != nil {
		return nil, err
	}
	s := NewPostgresStore(dbClient)
	if cfg.SchemaFile != "" {
		err = dbClient.InitDatabase(serviceHome, cfg.SchemaFile)
	} else {
		err = s.Migrate(context.Background())
	}
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(dbClient client.DBClientInterface) *PostgresStore {
	return &PostgresStore{client: dbClient, lock: lock.NewTenantLock()}
}

// Migrate creates the settings and schedule tables if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.client.Execute(ctx, scripts.Schema[dbType])
	return err
}

func (s *PostgresStore) Load(ctx context.Context, tenant string) (map[string]interface{}, error) {
	var raw map[string]interface{}
	found, err := s.loadDocument(ctx, scripts.GetSettingsByTenant[dbType], tenant, &raw)
	if err != nil {
		return nil, utils.WrapStoreError(err, "load settings", tenant)
	}
	if !found {
		return nil, nil
	}
	return raw, nil
}

func (s *PostgresStore) Save(ctx context.Context, tenant string, settings model.Settings) error {
	if err := s.upsert(ctx, scripts.UpsertSettings[dbType], "settings:"+tenant, tenant, settings); err != nil {
		return utils.WrapStoreError(err, "save settings", tenant)
	}
	return nil
}

func (s *PostgresStore) LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error) {
	schedule := emptySchedule()
	if _, err := s.loadDocument(ctx, scripts.GetScheduleByTenant[dbType], tenant, &schedule); err != nil {
		return schedulemodel.Schedule{}, utils.WrapStoreError(err, "load schedule", tenant)
	}
	return schedule, nil
}

func (s *PostgresStore) SaveSchedule(ctx context.Context, tenant string, schedule schedulemodel.Schedule) error {
	if err := s.upsert(ctx, scripts.UpsertSchedule[dbType], "schedule:"+tenant, tenant, schedule); err != nil {
		return utils.WrapStoreError(err, "save schedule", tenant)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.client.ExecuteQuery(ctx, "SELECT 1;")
	return err
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.client.Close()
}

func (s *PostgresStore) loadDocument(ctx context.Context, query, tenant string, into interface{}) (bool, error) {
	rows, err := s.client.ExecuteQuery(ctx, query, tenant)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	var data []byte
	switch doc := rows[0]["document"].(type) {
	case []byte:
		data = doc
	case string:
		data = []byte(doc)
	default:
		return false, fmt.Errorf("unexpected document column type %T", doc)
	}
	return true, json.Unmarshal(data, into)
}

func (s *PostgresStore) upsert(ctx context.Context, query, lockName, tenant string, document interface{}) error {
	payload, err := json.Marshal(document)
	if err != nil {
		return err
	}
	tx, err := s.client.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := s.lock.AcquireTx(ctx, tx, lockName); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, query, tenant, string(payload)); err != nil {
		_ = tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			log.GetLogger().Error("Postgres rejected document", log.String("tenant", tenant),
				log.String("pg_code", string(pqErr.Code)), log.String("pg_message", pqErr.Message))
		}
		return err
	}
	return tx.Commit()
}
