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

package services

import (
	"net/http"
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/settings/handler"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/security"
)

// SettingsService routes the settings editing API of a tenant.
type SettingsService struct {
	handler *handler.SettingsHandler
	mux     *http.ServeMux
}

func NewSettingsService() *SettingsService {
	return NewSettingsServiceWithHandler(handler.NewSettingsHandler())
}

func NewSettingsServiceWithHandler(h *handler.SettingsHandler) *SettingsService {
	s := &SettingsService{handler: h, mux: http.NewServeMux()}

	view := func(pattern string, fn http.HandlerFunc) {
		s.mux.HandleFunc(pattern, security.Guard(constants.OperationViewSettings, fn))
	}
	update := func(pattern string, fn http.HandlerFunc) {
		s.mux.HandleFunc(pattern, security.Guard(constants.OperationUpdateSettings, fn))
	}
	remove := func(pattern string, fn http.HandlerFunc) {
		s.mux.HandleFunc(pattern, security.Guard(constants.OperationDeleteSettings, fn))
	}

	view("GET /settings", h.GetSettings)
	view("GET /settings/conflicts", h.GetConflicts)
	update("POST /settings/inbound", h.ApplyInbound)
	update("POST /settings/refresh", h.RefreshSettings)
	update("DELETE /settings/session", h.CloseSession)

	update("POST /rules", h.CreateRule)
	update("PATCH /rules/{id}", h.EditRule)
	update("POST /rules/{id}/edit", h.BeginEdit)
	update("POST /rules/{id}/flush", h.FlushRule)
	update("POST /rules/{id}/cancel", h.CancelEdit)
	update("POST /rules/{id}/commit", h.CommitRule)
	remove("DELETE /rules/{id}", h.DeleteRule)

	update("PUT /staff-type-limits/{staffType}", h.UpdateStaffTypeLimit)
	update("POST /backup-assignments", h.AddBackupAssignment)
	remove("DELETE /backup-assignments/{id}", h.RemoveBackupAssignment)

	return s
}

// Route serves a request whose tenant and API base path the dispatcher already removed.
func (s *SettingsService) Route(w http.ResponseWriter, r *http.Request) {
	if trimmed := strings.TrimSuffix(r.URL.Path, "/"); trimmed != "" {
		r.URL.Path = trimmed
	}
	s.mux.ServeHTTP(w, r)
}
