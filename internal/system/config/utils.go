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
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
)

// LoadEnvFiles loads every *.env file in dir into the process environment. Variables that
// are already set win.
func LoadEnvFiles(dir string) ([]string, error) {
	envFiles, err := filepath.Glob(filepath.Join(dir, "*.env"))
	if err != nil || len(envFiles) == 0 {
		return nil, err
	}
	return envFiles, godotenv.Load(envFiles...)
}

// LoadConfig reads the yaml file under serviceHome, expanding ${VAR} references first.
func LoadConfig(serviceHome, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(serviceHome, filePath))
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	if cfg.Log.LogLevel == "" {
		cfg.Log.LogLevel = "INFO"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "", constants.StoreTypeMemory:
	case constants.StoreTypePostgres:
		ds := c.Database.DataSource
		if ds.Hostname == "" || ds.Name == "" || ds.Username == "" {
			return fmt.Errorf("database.datasource requires hostname, name and username")
		}
	case constants.StoreTypeMongoDB:
		if c.Database.MongoDB.URI == "" || c.Database.MongoDB.Database == "" {
			return fmt.Errorf("database.mongodb requires uri and database")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	for kind := range c.Reconciler.StrengthDefaults {
		if !model.RuleKind(kind).Valid() {
			return fmt.Errorf("reconciler.strength_defaults: unknown rule kind %q", kind)
		}
	}
	return nil
}

// KindDefaults returns the built-in defaults table with the configured overrides applied.
func (c ReconcilerConfig) KindDefaults() model.KindDefaultsTable {
	table := model.DefaultKindDefaults()
	for kind, override := range c.StrengthDefaults {
		d := table.For(model.RuleKind(kind))
		if override.PriorityLevel != nil {
			d.Strength.PriorityLevel = *override.PriorityLevel
		}
		if override.IsHardConstraint != nil {
			d.Strength.IsHardConstraint = *override.IsHardConstraint
		}
		if override.PenaltyWeight != nil {
			d.Strength.PenaltyWeight = *override.PenaltyWeight
		}
		table[model.RuleKind(kind)] = d
	}
	return table
}
