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

package config

import (
	"time"

	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
)

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
	Format   string `yaml:"format"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	// RequiredScopes maps an operation to the scopes a token must carry for it.
	RequiredScopes     map[string][]string `yaml:"required_scopes"`
	CORSAllowedOrigins []string            `yaml:"cors_allowed_origins"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type DatabaseConfig struct {
	// Type is one of memory, postgres or mongodb.
	Type       string           `yaml:"type"`
	SchemaFile string           `yaml:"schema_file"`
	DataSource DataSourceConfig `yaml:"datasource"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
}

// StrengthConfig overrides the default strength of one rule kind.
type StrengthConfig struct {
	PriorityLevel    *int     `yaml:"priority_level"`
	IsHardConstraint *bool    `yaml:"is_hard_constraint"`
	PenaltyWeight    *float64 `yaml:"penalty_weight"`
}

type ReconcilerConfig struct {
	QuietPeriodMs           int                       `yaml:"quiet_period_ms"`
	RefreshIntervalSeconds  int                       `yaml:"refresh_interval_seconds"`
	ScheduleCacheTTLSeconds int                       `yaml:"schedule_cache_ttl_seconds"`
	StrengthDefaults        map[string]StrengthConfig `yaml:"strength_defaults"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
}

func (c ReconcilerConfig) QuietPeriod() time.Duration {
	if c.QuietPeriodMs <= 0 {
		return constants.DefaultQuietPeriod
	}
	return time.Duration(c.QuietPeriodMs) * time.Millisecond
}

func (c ReconcilerConfig) RefreshInterval() time.Duration {
	if c.RefreshIntervalSeconds <= 0 {
		return constants.DefaultRefreshInterval
	}
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c ReconcilerConfig) ScheduleCacheTTL() time.Duration {
	if c.ScheduleCacheTTLSeconds <= 0 {
		return constants.DefaultScheduleCacheTTL
	}
	return time.Duration(c.ScheduleCacheTTLSeconds) * time.Second
}
