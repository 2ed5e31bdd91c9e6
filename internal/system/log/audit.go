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

package log

import (
	"encoding/json"
	"log/slog"
	"time"
)

// AuditEvent is a structured record of a settings mutation that reached the backend.
type AuditEvent struct {
	RecordedAt    string      `json:"recordedAt"`
	InitiatorID   string      `json:"initiatorId"`
	InitiatorType string      `json:"initiatorType"`
	Tenant        string      `json:"tenant"`
	TargetID      string      `json:"targetId"`
	TargetType    string      `json:"targetType"`
	ActionID      string      `json:"actionId"`
	TraceID       string      `json:"traceId,omitempty"`
	Data          interface{} `json:"data,omitempty"`
}

// Audit logs an audit event at info level.
func (l *Logger) Audit(event AuditEvent) {
	if event.RecordedAt == "" {
		event.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		l.Error("Failed to marshal audit event", Error(err))
		return
	}
	l.internal.Info("AUDIT", slog.String("audit_event", string(jsonData)))
}

// Action IDs for audit logging
const (
	ActionCreateRule       = "create-rule"
	ActionEditRule         = "edit-rule"
	ActionCommitRule       = "commit-rule"
	ActionDeleteRule       = "delete-rule"
	ActionCancelEdit       = "cancel-edit"
	ActionApplyInbound     = "apply-inbound"
	ActionStaffTypeLimit   = "update-staff-type-limit"
	ActionBackupAssignment = "update-backup-assignment"
	ActionPersistSettings  = "persist-settings"

	ActionAuthenticationSuccess = "authentication-success"
	ActionAuthenticationFailure = "authentication-failure"
)

// Initiator and target types
const (
	InitiatorTypeUser   = "user"
	InitiatorTypeSystem = "system"

	TargetTypeRule           = "rule"
	TargetTypeSettings       = "settings"
	TargetTypeStaffTypeLimit = "staff-type-limit"
)
