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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

const sampleConfig = `
addr:
  host: 0.0.0.0
  port: 8900
log:
  log_level: DEBUG
auth:
  enabled: true
  jwt_secret: ${TEST_JWT_SECRET}
database:
  type: postgres
  datasource:
    hostname: localhost
    port: 5432
    name: shifts
    username: shifts
    password: ${TEST_DB_PASSWORD}
reconciler:
  quiet_period_ms: 250
  strength_defaults:
    preferred_shift:
      priority_level: 2
      penalty_weight: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deployment.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadConfig_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")
	t.Setenv("TEST_DB_PASSWORD", "pw")
	dir := writeConfig(t, sampleConfig)

	cfg, err := LoadConfig(dir, "deployment.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8900, cfg.Addr.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "pw", cfg.Database.DataSource.Password)
	assert.Equal(t, 250*time.Millisecond, cfg.Reconciler.QuietPeriod())
	assert.Equal(t, 5*time.Minute, cfg.Reconciler.RefreshInterval(), "unset intervals fall back to defaults")
}

func TestLoadConfig_RejectsMissingSecret(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "")
	t.Setenv("TEST_DB_PASSWORD", "pw")
	dir := writeConfig(t, sampleConfig)

	_, err := LoadConfig(dir, "deployment.yaml")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadConfig_RejectsUnknownStore(t *testing.T) {
	dir := writeConfig(t, "database:\n  type: cassandra\n")
	_, err := LoadConfig(dir, "deployment.yaml")
	assert.Error(t, err)
}

func TestReconcilerConfig_KindDefaultsOverrides(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")
	dir := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(dir, "deployment.yaml")
	require.NoError(t, err)

	table := cfg.Reconciler.KindDefaults()
	preferred := table.For(model.KindPreferredShift)
	assert.Equal(t, 2, preferred.Strength.PriorityLevel)
	assert.Equal(t, 5.0, preferred.Strength.PenaltyWeight)
	assert.False(t, preferred.Strength.IsHardConstraint, "fields without an override keep the default")
	assert.Equal(t, model.DefaultKindDefaults()[model.KindRequiredOff], table.For(model.KindRequiredOff))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.env"), []byte("SSR_TEST_ONLY_VAR=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SSR_TEST_ONLY_VAR") })

	files, err := LoadEnvFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "loaded", os.Getenv("SSR_TEST_ONLY_VAR"))
}
