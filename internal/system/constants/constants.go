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

package constants

import "time"

const (
	ApiBasePath   = "/api/v1"
	DefaultTenant = "carbon.super"
	ServiceHome   = "SHIFT_SETTINGS_HOME"
)

type contextKey string

const (
	TenantContextKey  contextKey = "tenant"
	TraceIDContextKey contextKey = "trace_id"
	SubjectContextKey contextKey = "subject"
)

const (
	TraceIDHeader = "X-Trace-Id"
	TenantClaim   = "org_handle"
	ScopeClaim    = "scope"
)

// Operations guarded by the authorization layer.
const (
	OperationViewSettings   = "settings:view"
	OperationUpdateSettings = "settings:update"
	OperationDeleteSettings = "settings:delete"
)

// Keys of the settings document.
const (
	PriorityRulesKey     = "priorityRules"
	StaffGroupsKey       = "staffGroups"
	ConflictRulesKey     = "conflictRules"
	WeeklyLimitsKey      = "weeklyLimits"
	MonthlyLimitsKey     = "monthlyLimits"
	StaffTypeLimitsKey   = "staffTypeLimits"
	BackupAssignmentsKey = "backupAssignments"
)

// Legacy containers that older records nest their fields under, in precedence order.
var LegacyContainers = []string{"ruleDefinition", "ruleConfig"}

const (
	DefaultQuietPeriod        = 500 * time.Millisecond
	DefaultRefreshInterval    = 5 * time.Minute
	DefaultScheduleCacheTTL   = 60 * time.Second
	StaffTypeLimitKeyPrefix   = "staffTypeLimit:"
	BackupAssignmentKeyPrefix = "backupAssignment:"
)

const (
	StoreTypeMemory   = "memory"
	StoreTypePostgres = "postgres"
	StoreTypeMongoDB  = "mongodb"
)
