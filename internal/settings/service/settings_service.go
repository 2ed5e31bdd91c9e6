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

package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wso2/shift-settings-reconciler/internal/reconciler/engine"
	"github.com/wso2/shift-settings-reconciler/internal/schedule/validator"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/store"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	tracectx "github.com/wso2/shift-settings-reconciler/internal/system/context"
	errors2 "github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

type SettingsServiceInterface interface {
	OpenSession(ctx context.Context, tenant string) (model.DisplayModel, error)
	ApplyInbound(ctx context.Context, tenant string, raw map[string]interface{}) (model.DisplayModel, error)
	GetConflicts(ctx context.Context, tenant string) ([]model.Conflict, error)
	CreateRule(ctx context.Context, tenant string, collection model.Collection, kind model.RuleKind, patch model.RulePatch) (model.Rule, error)
	BeginEdit(ctx context.Context, tenant, id string) error
	EditRule(ctx context.Context, tenant, id string, patch model.RulePatch) (model.DisplayRule, error)
	FlushRule(ctx context.Context, tenant, id string) (model.DisplayRule, error)
	CancelEdit(ctx context.Context, tenant, id string) (model.DisplayModel, error)
	CommitRule(ctx context.Context, tenant, id string, patch model.RulePatch, skipValidation bool) (model.Settings, error)
	DeleteRule(ctx context.Context, tenant, id string) error
	UpdateStaffTypeLimit(ctx context.Context, tenant, staffType string, limit model.StaffTypeLimit, skipValidation bool) (model.Settings, error)
	AddBackupAssignment(ctx context.Context, tenant string, assignment model.BackupAssignment) (model.BackupAssignment, error)
	RemoveBackupAssignment(ctx context.Context, tenant, id string) error
	RefreshSession(ctx context.Context, tenant string) (model.DisplayModel, error)
	RefreshAll(ctx context.Context)
	CloseSession(ctx context.Context, tenant string) error
	CloseAll(ctx context.Context)
}

// Persister receives every outbound document an engine commits, numbered by its revision.
type Persister interface {
	Enqueue(tenant string, settings model.Settings, revision uint64)
}

// Options configure the engines the service opens.
type Options struct {
	QuietPeriod      time.Duration
	StrengthDefaults model.KindDefaultsTable
}

// SettingsService owns one reconciliation engine per tenant editing session.
type SettingsService struct {
	store     store.Store
	persister Persister
	validator *validator.LimitValidator
	opts      Options

	mu        sync.Mutex
	sessions  map[string]*engine.Engine
	saved     map[string]uint64
	revisions atomic.Uint64
	opening   singleflight.Group
}

var (
	instance SettingsServiceInterface
	initMu   sync.RWMutex
)

// NewSettingsService wires a service over its collaborators.
func NewSettingsService(st store.Store, persister Persister, limitValidator *validator.LimitValidator, opts Options) *SettingsService {
	return &SettingsService{
		store:     st,
		persister: persister,
		validator: limitValidator,
		opts:      opts,
		sessions:  make(map[string]*engine.Engine),
		saved:     make(map[string]uint64),
	}
}

// MarkSaved records that the store holds every outbound revision of the tenant up to revision.
// The persistence worker calls it after each successful save.
func (s *SettingsService) MarkSaved(tenant string, revision uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision > s.saved[tenant] {
		s.saved[tenant] = revision
	}
}

func (s *SettingsService) savedRevision(tenant string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[tenant]
}

// InitSettingsService registers the process-wide service returned by GetSettingsService.
func InitSettingsService(svc SettingsServiceInterface) {
	initMu.Lock()
	defer initMu.Unlock()
	instance = svc
}

// GetSettingsService returns the registered settings service.
func GetSettingsService() SettingsServiceInterface {
	initMu.RLock()
	defer initMu.RUnlock()
	if instance == nil {
		panic("settings service is not initialized")
	}
	return instance
}

// OpenSession returns the display model of the tenant's session, opening it from the store
// if needed.
func (s *SettingsService) OpenSession(ctx context.Context, tenant string) (model.DisplayModel, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayModel{}, err
	}
	return e.Display(), nil
}

func (s *SettingsService) ApplyInbound(ctx context.Context, tenant string, raw map[string]interface{}) (model.DisplayModel, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayModel{}, err
	}
	dm, _ := e.ApplyInbound(raw)
	s.audit(ctx, tenant, log.ActionApplyInbound, tenant, log.TargetTypeSettings, nil)
	return dm, nil
}

func (s *SettingsService) GetConflicts(ctx context.Context, tenant string) ([]model.Conflict, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return e.Conflicts(), nil
}

func (s *SettingsService) CreateRule(ctx context.Context, tenant string, collection model.Collection,
	kind model.RuleKind, patch model.RulePatch) (model.Rule, error) {

	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.Rule{}, err
	}
	rule, err := e.Create(collection, kind, patch)
	if err != nil {
		return model.Rule{}, translate(ctx, err, "")
	}
	s.audit(ctx, tenant, log.ActionCreateRule, rule.ID, log.TargetTypeRule, map[string]interface{}{
		"kind": rule.Kind, "staged": rule.IsLocalOnly,
	})
	return rule, nil
}

func (s *SettingsService) BeginEdit(ctx context.Context, tenant, id string) error {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return err
	}
	return translate(ctx, e.BeginEdit(id), id)
}

// EditRule buffers a field edit and returns the rule as it now displays.
func (s *SettingsService) EditRule(ctx context.Context, tenant, id string, patch model.RulePatch) (model.DisplayRule, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayRule{}, err
	}
	if err := e.Set(id, patch); err != nil {
		return model.DisplayRule{}, translate(ctx, err, id)
	}
	s.audit(ctx, tenant, log.ActionEditRule, id, log.TargetTypeRule, patch.Fields())
	return displayed(e, id)
}

func (s *SettingsService) FlushRule(ctx context.Context, tenant, id string) (model.DisplayRule, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayRule{}, err
	}
	if err := e.Flush(id); err != nil {
		return model.DisplayRule{}, translate(ctx, err, id)
	}
	return displayed(e, id)
}

func (s *SettingsService) CancelEdit(ctx context.Context, tenant, id string) (model.DisplayModel, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayModel{}, err
	}
	if err := e.Cancel(id); err != nil {
		return model.DisplayModel{}, translate(ctx, err, id)
	}
	s.audit(ctx, tenant, log.ActionCancelEdit, id, log.TargetTypeRule, nil)
	return e.Display(), nil
}

func (s *SettingsService) CommitRule(ctx context.Context, tenant, id string, patch model.RulePatch,
	skipValidation bool) (model.Settings, error) {

	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.Settings{}, err
	}
	out, err := e.Commit(ctx, id, patch, engine.CommitOptions{SkipValidation: skipValidation})
	if err != nil {
		return model.Settings{}, translate(ctx, err, id)
	}
	s.audit(ctx, tenant, log.ActionCommitRule, id, log.TargetTypeRule, map[string]interface{}{
		"fields": patch.Fields(), "skipValidation": skipValidation,
	})
	return out, nil
}

func (s *SettingsService) DeleteRule(ctx context.Context, tenant, id string) error {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return err
	}
	if err := e.Delete(id); err != nil {
		return translate(ctx, err, id)
	}
	s.audit(ctx, tenant, log.ActionDeleteRule, id, log.TargetTypeRule, nil)
	return nil
}

func (s *SettingsService) UpdateStaffTypeLimit(ctx context.Context, tenant, staffType string,
	limit model.StaffTypeLimit, skipValidation bool) (model.Settings, error) {

	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.Settings{}, err
	}
	out, err := e.CommitStaffTypeLimit(ctx, staffType, limit, engine.CommitOptions{SkipValidation: skipValidation})
	if err != nil {
		return model.Settings{}, translate(ctx, err, staffType)
	}
	s.audit(ctx, tenant, log.ActionStaffTypeLimit, staffType, log.TargetTypeStaffTypeLimit, limit)
	return out, nil
}

func (s *SettingsService) AddBackupAssignment(ctx context.Context, tenant string,
	assignment model.BackupAssignment) (model.BackupAssignment, error) {

	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.BackupAssignment{}, err
	}
	added, err := e.AddBackupAssignment(assignment)
	if err != nil {
		return model.BackupAssignment{}, translate(ctx, err, assignment.GroupID)
	}
	s.audit(ctx, tenant, log.ActionBackupAssignment, added.ID, log.TargetTypeSettings, added)
	return added, nil
}

func (s *SettingsService) RemoveBackupAssignment(ctx context.Context, tenant, id string) error {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return err
	}
	if err := e.RemoveBackupAssignment(id); err != nil {
		return translate(ctx, err, id)
	}
	s.audit(ctx, tenant, log.ActionBackupAssignment, id, log.TargetTypeSettings, nil)
	return nil
}

// RefreshSession re-reads the stored document and applies it to the open session as an
// inbound echo. Tombstones and staged rules of the session survive, and so do commits the
// worker has not saved yet.
func (s *SettingsService) RefreshSession(ctx context.Context, tenant string) (model.DisplayModel, error) {
	e, err := s.session(ctx, tenant)
	if err != nil {
		return model.DisplayModel{}, err
	}
	// Read before loading: the document holds at least this revision.
	saved := s.savedRevision(tenant)
	raw, err := s.store.Load(ctx, tenant)
	if err != nil {
		return model.DisplayModel{}, errors2.NewServerErrorWithTraceID(errors2.LOAD_SETTINGS, err, tracectx.GetTraceID(ctx))
	}
	if s.validator != nil {
		s.validator.Invalidate(tenant)
	}
	if schedule, err := s.store.LoadSchedule(ctx, tenant); err == nil {
		e.SetRoster(schedule.Staff)
	}
	dm, _ := e.ApplyInboundAsOf(raw, saved)
	return dm, nil
}

// RefreshAll refreshes every open session. Failures are logged per tenant.
func (s *SettingsService) RefreshAll(ctx context.Context) {
	for _, tenant := range s.tenants() {
		if _, err := s.RefreshSession(ctx, tenant); err != nil {
			log.GetLogger().Warn("Failed to refresh settings session", log.String("tenant", tenant), log.Error(err))
		}
	}
}

// CloseSession commits every pending edit of the tenant and discards its engine.
func (s *SettingsService) CloseSession(ctx context.Context, tenant string) error {
	s.mu.Lock()
	e, ok := s.sessions[tenant]
	delete(s.sessions, tenant)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	e.FlushAll()
	e.Close()
	log.GetLogger().Info("Closed settings session", log.String("tenant", tenant))
	return nil
}

func (s *SettingsService) CloseAll(ctx context.Context) {
	for _, tenant := range s.tenants() {
		_ = s.CloseSession(ctx, tenant)
	}
}

func (s *SettingsService) tenants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenants := make([]string, 0, len(s.sessions))
	for t := range s.sessions {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return tenants
}

// session returns the open engine of the tenant, building it from the store on first use.
// Concurrent first calls for a tenant share one load, and the service lock is not held during it.
func (s *SettingsService) session(ctx context.Context, tenant string) (*engine.Engine, error) {
	if e := s.openEngine(tenant); e != nil {
		return e, nil
	}
	v, err, _ := s.opening.Do(tenant, func() (interface{}, error) {
		if e := s.openEngine(tenant); e != nil {
			return e, nil
		}
		e, err := s.build(ctx, tenant)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.sessions[tenant] = e
		s.mu.Unlock()
		log.GetLogger().Info("Opened settings session", log.String("tenant", tenant))
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.Engine), nil
}

func (s *SettingsService) openEngine(tenant string) *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[tenant]; ok && !e.IsClosed() {
		return e
	}
	return nil
}

func (s *SettingsService) build(ctx context.Context, tenant string) (*engine.Engine, error) {
	traceID := tracectx.GetTraceID(ctx)
	raw, err := s.store.Load(ctx, tenant)
	if err != nil {
		log.GetLogger().Error("Failed to load settings", log.String("tenant", tenant), log.Error(err))
		return nil, errors2.NewServerErrorWithTraceID(errors2.LOAD_SETTINGS, err, traceID)
	}
	schedule, err := s.store.LoadSchedule(ctx, tenant)
	if err != nil {
		return nil, errors2.NewServerErrorWithTraceID(errors2.LOAD_SCHEDULE, err, traceID)
	}

	opts := []engine.Option{
		engine.WithRoster(schedule.Staff),
		engine.WithLogger(log.GetLogger().With(log.String("tenant", tenant))),
		engine.WithQuietPeriod(s.opts.QuietPeriod),
		engine.WithRevisions(&s.revisions),
	}
	if s.opts.StrengthDefaults != nil {
		opts = append(opts, engine.WithStrengthDefaults(s.opts.StrengthDefaults))
	}
	if s.persister != nil {
		opts = append(opts, engine.WithCommitHandler(func(settings model.Settings, revision uint64) {
			s.persister.Enqueue(tenant, settings, revision)
		}))
	}
	if s.validator != nil {
		opts = append(opts, engine.WithValidator(s.validator.ForTenant(tenant)))
	}
	return engine.New(raw, opts...), nil
}

func displayed(e *engine.Engine, id string) (model.DisplayRule, error) {
	rule, ok := e.Display().Rule(id)
	if !ok {
		return model.DisplayRule{}, errors2.NewClientError(errors2.RULE_NOT_FOUND, http.StatusNotFound)
	}
	return rule, nil
}

// translate maps engine errors onto the client and server error catalogue.
func translate(ctx context.Context, err error, id string) error {
	if err == nil {
		return nil
	}
	traceID := tracectx.GetTraceID(ctx)
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		return errors2.NewClientErrorWithDetails(errors2.LIMIT_VIOLATION, http.StatusUnprocessableEntity, verr.Violations)
	case errors.Is(err, engine.ErrNotFound):
		return errors2.NewClientErrorWithTraceID(errors2.RULE_NOT_FOUND.WithDescription("No rule with id %s.", id),
			http.StatusNotFound, traceID)
	case errors.Is(err, engine.ErrTombstoned):
		return errors2.NewClientErrorWithTraceID(errors2.RULE_DELETED.WithDescription("Rule %s has been deleted.", id),
			http.StatusGone, traceID)
	case errors.Is(err, engine.ErrSuperseded):
		return errors2.NewClientErrorWithTraceID(errors2.COMMIT_SUPERSEDED, http.StatusConflict, traceID)
	case errors.Is(err, engine.ErrInvalidKind):
		return errors2.NewClientErrorWithTraceID(errors2.INVALID_RULE_KIND, http.StatusBadRequest, traceID)
	case errors.Is(err, engine.ErrClosed):
		return errors2.NewClientErrorWithTraceID(errors2.SESSION_CLOSED, http.StatusConflict, traceID)
	case errors.Is(err, engine.ErrNoGroup):
		return errors2.NewClientErrorWithTraceID(errors2.GROUP_NOT_FOUND.WithDescription("No active staff group %s.", id),
			http.StatusNotFound, traceID)
	}
	return errors2.NewServerErrorWithTraceID(errors2.VALIDATE_LIMIT, err, traceID)
}

func (s *SettingsService) audit(ctx context.Context, tenant, action, targetID, targetType string, data interface{}) {
	subject, _ := ctx.Value(constants.SubjectContextKey).(string)
	initiatorType := log.InitiatorTypeUser
	if subject == "" {
		initiatorType = log.InitiatorTypeSystem
	}
	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   subject,
		InitiatorType: initiatorType,
		Tenant:        tenant,
		TargetID:      targetID,
		TargetType:    targetType,
		ActionID:      action,
		TraceID:       tracectx.GetTraceID(ctx),
		Data:          data,
	})
}
