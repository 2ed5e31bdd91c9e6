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
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/normalizer"
	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

const (
	settingsCollection = "shift_settings"
	scheduleCollection = "shift_schedules"
)

type settingsRecord struct {
	Tenant    string         `bson:"_id"`
	Document  model.Settings `bson:"document"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type scheduleRecord struct {
	Tenant    string                 `bson:"_id"`
	Schedule  schedulemodel.Schedule `bson:"schedule"`
	UpdatedAt time.Time              `bson:"updated_at"`
}

// MongoStore keeps one settings document and one schedule document per tenant, keyed by
// tenant in _id.
type MongoStore struct {
	client    *mongo.Client
	settings  *mongo.Collection
	schedules *mongo.Collection
}

// OpenMongoStore connects to the configured deployment and pings it.
func OpenMongoStore(ctx context.Context, cfg config.MongoDBConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return NewMongoStore(client, cfg.Database), nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		settings:  db.Collection(settingsCollection),
		schedules: db.Collection(scheduleCollection),
	}
}

func (s *MongoStore) Load(ctx context.Context, tenant string) (map[string]interface{}, error) {
	var rec settingsRecord
	err := s.settings.FindOne(ctx, bson.M{"_id": tenant}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapStoreError(err, "load settings", tenant)
	}
	return normalizer.SettingsToRaw(rec.Document), nil
}

func (s *MongoStore) Save(ctx context.Context, tenant string, settings model.Settings) error {
	rec := settingsRecord{Tenant: tenant, Document: settings, UpdatedAt: time.Now().UTC()}
	_, err := s.settings.ReplaceOne(ctx, bson.M{"_id": tenant}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return utils.WrapStoreError(err, "save settings", tenant)
	}
	return nil
}

func (s *MongoStore) LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error) {
	var rec scheduleRecord
	err := s.schedules.FindOne(ctx, bson.M{"_id": tenant}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return emptySchedule(), nil
	}
	if err != nil {
		return schedulemodel.Schedule{}, utils.WrapStoreError(err, "load schedule", tenant)
	}
	return rec.Schedule, nil
}

func (s *MongoStore) SaveSchedule(ctx context.Context, tenant string, schedule schedulemodel.Schedule) error {
	rec := scheduleRecord{Tenant: tenant, Schedule: schedule, UpdatedAt: time.Now().UTC()}
	_, err := s.schedules.ReplaceOne(ctx, bson.M{"_id": tenant}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return utils.WrapStoreError(err, "save schedule", tenant)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
