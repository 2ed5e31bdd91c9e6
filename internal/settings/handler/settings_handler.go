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

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/provider"
	tracectx "github.com/wso2/shift-settings-reconciler/internal/system/context"
	"github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/pagination"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

// CreateRuleRequest creates a rule in a collection. A missing collection is derived from the
// kind and a missing kind from the collection.
type CreateRuleRequest struct {
	Collection model.Collection `json:"collection" validate:"omitempty,oneof=priorityRules staffGroups conflictRules weeklyLimits monthlyLimits"`
	Kind       model.RuleKind   `json:"kind" validate:"omitempty,rulekind"`
	model.RulePatch
}

// CommitRuleRequest carries the final field values of an edit and the override flag.
type CommitRuleRequest struct {
	model.RulePatch
	SkipValidation bool `json:"skipValidation"`
}

// StaffTypeLimitRequest replaces the limit of one staff status.
type StaffTypeLimitRequest struct {
	MaxOff         *int     `json:"maxOff" validate:"required,gte=0"`
	MaxEarly       *int     `json:"maxEarly" validate:"required,gte=0"`
	IsHard         bool     `json:"isHard"`
	PenaltyWeight  *float64 `json:"penaltyWeight" validate:"omitempty,gte=0"`
	SkipValidation bool     `json:"skipValidation"`
}

// BackupAssignmentRequest adds a backup staff member to a group.
type BackupAssignmentRequest struct {
	ID             string `json:"id" validate:"omitempty,max=64"`
	StaffID        string `json:"staffId" validate:"required"`
	GroupID        string `json:"groupId" validate:"required"`
	AssignmentType string `json:"assignmentType" validate:"omitempty,oneof=regular emergency"`
	PriorityOrder  int    `json:"priorityOrder" validate:"gte=0"`
	Notes          string `json:"notes" validate:"max=500"`
}

// SettingsHandler serves the settings editing session of the request tenant.
type SettingsHandler struct {
	provider provider.SettingsProviderInterface
	validate *validator.Validate
}

// NewSettingsHandler returns a handler backed by the process-wide settings service.
func NewSettingsHandler() *SettingsHandler {
	return NewSettingsHandlerWithProvider(provider.NewSettingsProvider())
}

func NewSettingsHandlerWithProvider(p provider.SettingsProviderInterface) *SettingsHandler {
	v := validator.New()
	_ = v.RegisterValidation("rulekind", func(fl validator.FieldLevel) bool {
		return model.RuleKind(fl.Field().String()).Valid()
	})
	return &SettingsHandler{provider: p, validate: v}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	display, err := h.provider.GetSettingsService().OpenSession(r.Context(), utils.TenantFromContext(r.Context()))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, display)
}

// ApplyInbound handles POST /settings/inbound. The body is a settings document in any
// accepted wire format.
func (h *SettingsHandler) ApplyInbound(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if !h.decode(w, r, &raw, "settings document", false) {
		return
	}
	display, err := h.provider.GetSettingsService().ApplyInbound(r.Context(), utils.TenantFromContext(r.Context()), raw)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, display)
}

// ConflictListResponse is one page of the advisory conflicts of the session.
type ConflictListResponse struct {
	Conflicts  []model.Conflict      `json:"conflicts"`
	Pagination pagination.Pagination `json:"pagination"`
}

// GetConflicts handles GET /settings/conflicts?count=&cursor=
func (h *SettingsHandler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	traceID := tracectx.GetTraceID(r.Context())
	count, err := pagination.ParseCount(r)
	if err != nil {
		utils.HandleError(w, r, errors.NewClientErrorWithTraceID(
			errors.INVALID_PAGINATION.WithDescription("%s", err.Error()), http.StatusBadRequest, traceID))
		return
	}
	conflicts, err := h.provider.GetSettingsService().GetConflicts(r.Context(), utils.TenantFromContext(r.Context()))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	page, p, err := pagination.Page(conflicts, conflictKey, r.URL.Query().Get("cursor"), count)
	if err != nil {
		utils.HandleError(w, r, errors.NewClientErrorWithTraceID(
			errors.INVALID_PAGINATION.WithDescription("%s", err.Error()), http.StatusBadRequest, traceID))
		return
	}
	if page == nil {
		page = []model.Conflict{}
	}
	utils.WriteJSON(w, http.StatusOK, ConflictListResponse{Conflicts: page, Pagination: p})
}

func conflictKey(c model.Conflict) string {
	return c.RuleIDs[0] + "|" + c.RuleIDs[1] + "|" + string(c.ShiftType)
}

// RefreshSettings handles POST /settings/refresh
func (h *SettingsHandler) RefreshSettings(w http.ResponseWriter, r *http.Request) {
	display, err := h.provider.GetSettingsService().RefreshSession(r.Context(), utils.TenantFromContext(r.Context()))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, display)
}

// CloseSession handles DELETE /settings/session
func (h *SettingsHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.GetSettingsService().CloseSession(r.Context(), utils.TenantFromContext(r.Context())); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateRule handles POST /rules
func (h *SettingsHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if !h.decode(w, r, &req, "rule", true) {
		return
	}
	rule, err := h.provider.GetSettingsService().CreateRule(r.Context(), utils.TenantFromContext(r.Context()),
		req.Collection, req.Kind, req.RulePatch)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, rule)
}

// EditRule handles PATCH /rules/{id}
func (h *SettingsHandler) EditRule(w http.ResponseWriter, r *http.Request) {
	var patch model.RulePatch
	if !h.decode(w, r, &patch, "rule", false) {
		return
	}
	rule, err := h.provider.GetSettingsService().EditRule(r.Context(), utils.TenantFromContext(r.Context()),
		r.PathValue("id"), patch)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rule)
}

// BeginEdit handles POST /rules/{id}/edit
func (h *SettingsHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	err := h.provider.GetSettingsService().BeginEdit(r.Context(), utils.TenantFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlushRule handles POST /rules/{id}/flush
func (h *SettingsHandler) FlushRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.provider.GetSettingsService().FlushRule(r.Context(), utils.TenantFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rule)
}

// CancelEdit handles POST /rules/{id}/cancel
func (h *SettingsHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	display, err := h.provider.GetSettingsService().CancelEdit(r.Context(), utils.TenantFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, display)
}

// CommitRule handles POST /rules/{id}/commit. An empty body commits the buffered edits.
func (h *SettingsHandler) CommitRule(w http.ResponseWriter, r *http.Request) {
	var req CommitRuleRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req, "rule commit", false) {
		return
	}
	out, err := h.provider.GetSettingsService().CommitRule(r.Context(), utils.TenantFromContext(r.Context()),
		r.PathValue("id"), req.RulePatch, req.SkipValidation)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// DeleteRule handles DELETE /rules/{id}
func (h *SettingsHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	err := h.provider.GetSettingsService().DeleteRule(r.Context(), utils.TenantFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStaffTypeLimit handles PUT /staff-type-limits/{staffType}
func (h *SettingsHandler) UpdateStaffTypeLimit(w http.ResponseWriter, r *http.Request) {
	var req StaffTypeLimitRequest
	if !h.decode(w, r, &req, "staff type limit", true) {
		return
	}
	limit := model.StaffTypeLimit{
		MaxOff:   *req.MaxOff,
		MaxEarly: *req.MaxEarly,
		IsHard:   req.IsHard,
	}
	if req.PenaltyWeight != nil {
		limit.PenaltyWeight = *req.PenaltyWeight
	}
	out, err := h.provider.GetSettingsService().UpdateStaffTypeLimit(r.Context(), utils.TenantFromContext(r.Context()),
		r.PathValue("staffType"), limit, req.SkipValidation)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// AddBackupAssignment handles POST /backup-assignments
func (h *SettingsHandler) AddBackupAssignment(w http.ResponseWriter, r *http.Request) {
	var req BackupAssignmentRequest
	if !h.decode(w, r, &req, "backup assignment", true) {
		return
	}
	added, err := h.provider.GetSettingsService().AddBackupAssignment(r.Context(), utils.TenantFromContext(r.Context()),
		model.BackupAssignment{
			ID:             req.ID,
			StaffID:        req.StaffID,
			GroupID:        req.GroupID,
			AssignmentType: req.AssignmentType,
			PriorityOrder:  req.PriorityOrder,
			Notes:          req.Notes,
		})
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, added)
}

// RemoveBackupAssignment handles DELETE /backup-assignments/{id}
func (h *SettingsHandler) RemoveBackupAssignment(w http.ResponseWriter, r *http.Request) {
	err := h.provider.GetSettingsService().RemoveBackupAssignment(r.Context(), utils.TenantFromContext(r.Context()),
		r.PathValue("id"))
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads the JSON body into dst and, when validate is set, checks its struct tags.
// It writes the error response and returns false on failure.
func (h *SettingsHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, resource string, validate bool) bool {
	traceID := tracectx.GetTraceID(r.Context())
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		utils.HandleError(w, r, errors.NewClientErrorWithTraceID(
			errors.INVALID_REQUEST_BODY.WithDescription("%s", utils.HandleDecodeError(err, resource)),
			http.StatusBadRequest, traceID))
		return false
	}
	if !validate {
		return true
	}
	if err := h.validate.Struct(dst); err != nil {
		utils.HandleError(w, r, errors.NewClientErrorWithTraceID(
			errors.INVALID_REQUEST_BODY.WithDescription("%s", describeValidation(err, resource)),
			http.StatusBadRequest, traceID))
		return false
	}
	return true
}

func describeValidation(err error, resource string) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Sprintf("Invalid %s request body.", resource)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Sprintf("Invalid %s request body: %s.", resource, strings.Join(msgs, "; "))
}
