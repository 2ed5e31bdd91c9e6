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

package scripts

var GetSettingsByTenant = map[string]string{
	"postgres": `SELECT document::text FROM shift_settings WHERE tenant_id = $1`,
}

var UpsertSettings = map[string]string{
	"postgres": `
		INSERT INTO shift_settings (tenant_id, document, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (tenant_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
}

var GetScheduleByTenant = map[string]string{
	"postgres": `SELECT document::text FROM shift_schedules WHERE tenant_id = $1`,
}

var UpsertSchedule = map[string]string{
	"postgres": `
		INSERT INTO shift_schedules (tenant_id, document, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (tenant_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
}

// Schema creates the tables used by the Postgres settings store.
var Schema = map[string]string{
	"postgres": `
		CREATE TABLE IF NOT EXISTS shift_settings (
			tenant_id  VARCHAR(255) PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS shift_schedules (
			tenant_id  VARCHAR(255) PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
}
