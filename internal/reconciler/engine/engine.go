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

package engine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wso2/shift-settings-reconciler/internal/reconciler/buffer"
	"github.com/wso2/shift-settings-reconciler/internal/reconciler/conflict"
	"github.com/wso2/shift-settings-reconciler/internal/reconciler/scheduler"
	"github.com/wso2/shift-settings-reconciler/internal/reconciler/stage"
	"github.com/wso2/shift-settings-reconciler/internal/reconciler/tombstone"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/normalizer"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// Commit sources, used in logs.
const (
	sourceCreate    = "create"
	sourceImmediate = "immediate"
	sourceDebounce  = "debounce"
	sourceFlush     = "flush"
	sourceCommit    = "commit"
	sourceCancel    = "cancel"
	sourceDelete    = "delete"
	sourceLimit     = "staff-type-limit"
	sourceBackup    = "backup-assignment"
)

// Engine reconciles one settings editing session. All state is guarded by mu, which plays the
// part of the UI event loop: every public method and every debounce callback runs under it.
// The canonical settings are only written by the commit path.
type Engine struct {
	mu sync.Mutex

	settings    model.Settings
	buffer      *buffer.EditBuffer
	scheduler   *scheduler.Scheduler
	stage       *stage.Stage
	tombstones  *tombstone.Reconciler
	detector    *conflict.Detector
	normalizer  *normalizer.Normalizer
	generations map[string]uint64
	snapshots   map[string]model.Rule
	unacked     map[string]uint64
	revisions   *atomic.Uint64
	conflicts   []model.Conflict
	closed      bool

	onCommit   CommitFunc
	onValidate ValidateFunc
	roster     []model.StaffMember
	quiet      time.Duration
	defaults   model.KindDefaultsTable
	logger     *log.Logger
}

// New builds an engine over the initial raw settings document.
func New(initial map[string]interface{}, opts ...Option) *Engine {
	e := &Engine{
		settings:    model.NewSettings(),
		buffer:      buffer.New(),
		stage:       stage.New(),
		tombstones:  tombstone.New(),
		generations: make(map[string]uint64),
		snapshots:   make(map[string]model.Rule),
		unacked:     make(map[string]uint64),
	}
	defaultOptions(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLogger()
	}
	if e.revisions == nil {
		e.revisions = new(atomic.Uint64)
	}
	e.normalizer = normalizer.New(e.defaults)
	e.detector = conflict.NewDetector(e.roster)
	e.scheduler = scheduler.New(e.quiet, &e.mu, func(id string) {
		e.commitBufferedLocked(id, sourceDebounce)
	})

	e.mergeInboundLocked(initial, 0)
	e.recomputeLocked()
	return e
}

// ApplyInbound merges a settings document echoed by the backend. Records are matched by id:
// inbound content replaces the canonical copy, local records missing from the echo are kept,
// tombstoned ids stay inactive and staged rules are untouched. A record committed locally is
// kept until the echo carries the committed value.
func (e *Engine) ApplyInbound(raw map[string]interface{}) (model.DisplayModel, []model.Conflict) {
	return e.ApplyInboundAsOf(raw, 0)
}

// ApplyInboundAsOf is ApplyInbound for a document known to contain every outbound revision up to
// and including saved. Local commits at or below saved no longer shield their records.
func (e *Engine) ApplyInboundAsOf(raw map[string]interface{}, saved uint64) (model.DisplayModel, []model.Conflict) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.mergeInboundLocked(raw, saved)
		e.recomputeLocked()
	}
	return e.displayLocked(), cloneConflicts(e.conflicts)
}

// Create adds a rule. A rule that is not yet complete is staged locally; otherwise it is
// committed straight away.
func (e *Engine) Create(collection model.Collection, kind model.RuleKind, patch model.RulePatch) (model.Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return model.Rule{}, ErrClosed
	}
	if kind == "" {
		kind = collection.DefaultKind()
	}
	if collection == "" {
		collection = model.CollectionFor(kind)
	}
	if !kind.Valid() || !collection.Accepts(kind) {
		return model.Rule{}, ErrInvalidKind
	}

	d := e.normalizer.Defaults(kind)
	rule := model.Rule{
		ID:              uuid.NewString(),
		Kind:            kind,
		Name:            e.uniqueNameLocked(collection, kind),
		Targets:         model.Targets{All: d.TargetAll, StaffIDs: []string{}},
		TemporalScope:   model.TemporalScope{DaysOfWeek: []int{}},
		ShiftConstraint: model.ShiftConstraint{ShiftType: d.ShiftType, Exceptions: []model.ShiftType{}},
		Strength:        d.Strength,
		Limit:           d.Limit,
		GroupIDs:        []string{},
		IsActive:        true,
	}
	rule = e.normalizer.Canonicalize(patch.Apply(rule))
	rule.IsActive = true
	rule.IsLocalOnly = false

	if !stage.IsComplete(rule) {
		held := e.stage.Hold(rule)
		e.logger.Debug("Staged incomplete rule", log.String("rule_id", rule.ID), log.String("kind", string(kind)))
		return held, nil
	}
	e.settings.SetRules(collection, append(e.settings.Rules(collection), rule))
	e.recomputeLocked()
	e.emitLocked(sourceCreate, rule.ID)
	return rule.Clone(), nil
}

// BeginEdit records the canonical value of the rule so that Cancel can restore it.
func (e *Engine) BeginEdit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rule, err := e.editableLocked(id)
	if err != nil {
		return err
	}
	e.beginEditLocked(id, rule)
	return nil
}

// Set buffers a field edit. Free-text edits wait for the quiet period; every other field is
// committed at once through the same path the timer uses. Set never validates.
func (e *Engine) Set(id string, patch model.RulePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rule, err := e.editableLocked(id)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	e.beginEditLocked(id, rule)
	e.buffer.Set(id, patch)
	e.generations[id]++

	if patch.IsTextOnly() {
		e.scheduler.Schedule(id)
		return nil
	}
	e.scheduler.Flush(id)
	e.commitBufferedLocked(id, sourceImmediate)
	return nil
}

// Flush commits the pending edit of the rule now and ends its editing session.
func (e *Engine) Flush(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if _, _, _, ok := e.findLocked(id); !ok {
		return ErrNotFound
	}
	e.scheduler.Flush(id)
	e.commitBufferedLocked(id, sourceFlush)
	delete(e.snapshots, id)
	return nil
}

// FlushAll commits every pending edit, as when the user leaves the settings view.
func (e *Engine) FlushAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	ids := e.buffer.IDs()
	for _, id := range e.scheduler.PendingIDs() {
		if !e.buffer.Has(id) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		e.scheduler.Flush(id)
		e.commitBufferedLocked(id, sourceFlush)
	}
	e.snapshots = make(map[string]model.Rule)
}

// Cancel discards the pending edit of the rule. A staged rule is dropped entirely; a persisted
// rule whose immediate edits already reached the canonical list is restored to the value it
// had when editing began.
func (e *Engine) Cancel(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	rule, c, staged, ok := e.findLocked(id)
	if !ok {
		return ErrNotFound
	}
	e.scheduler.Cancel(id)
	e.buffer.Clear(id)
	e.generations[id]++
	snapshot, hadSnapshot := e.snapshots[id]
	delete(e.snapshots, id)

	if staged {
		e.stage.Discard(id)
		e.logger.Debug("Discarded staged rule", log.String("rule_id", id))
		return nil
	}
	if hadSnapshot && !e.tombstones.IsTombstoned(id) && !reflect.DeepEqual(snapshot, rule) {
		e.replaceLocked(c, snapshot)
		e.recomputeLocked()
		e.emitLocked(sourceCancel, id)
	}
	return nil
}

// Commit applies the pending edit of the rule together with patch. Limits are checked by the
// host validator first unless opts.SkipValidation is set; the lock is released for the
// round-trip and the result is dropped with ErrSuperseded if the rule was edited or deleted
// meanwhile. A rejection returns *ValidationError and leaves the canonical value unchanged.
func (e *Engine) Commit(ctx context.Context, id string, patch model.RulePatch, opts CommitOptions) (model.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rule, err := e.editableLocked(id)
	if err != nil {
		return model.Settings{}, err
	}
	e.scheduler.Cancel(id)
	buffered, _ := e.buffer.Take(id)
	patch = buffered.Merge(patch)
	e.generations[id]++

	candidate := e.normalizer.Canonicalize(patch.Apply(rule))
	if candidate.Kind.IsLimit() && e.onValidate != nil && !opts.SkipValidation {
		before := rule.Clone()
		change := model.CandidateChange{RuleID: id, Before: &before, Rule: &candidate}
		if err := e.validateLocked(ctx, id, change); err != nil {
			e.restoreBufferLocked(id, buffered)
			return model.Settings{}, err
		}
		// The rule may have been replaced by an inbound echo while unlocked.
		rule, err = e.editableLocked(id)
		if err != nil {
			e.restoreBufferLocked(id, buffered)
			return model.Settings{}, ErrSuperseded
		}
		candidate = e.normalizer.Canonicalize(patch.Apply(rule))
	}

	_, c, staged, _ := e.findLocked(id)
	changed := e.writeLocked(c, candidate, staged)
	delete(e.snapshots, id)
	if !changed {
		return e.outboundLocked(), nil
	}
	e.recomputeLocked()
	return e.emitLocked(sourceCommit, id), nil
}

// restoreBufferLocked puts back the pending edit a failed commit took, under any edit typed while
// the lock was released, and restarts its quiet period so the restored edit still commits.
func (e *Engine) restoreBufferLocked(id string, taken model.RulePatch) {
	if taken.IsEmpty() || e.tombstones.IsTombstoned(id) || e.closed {
		return
	}
	if newer, ok := e.buffer.Take(id); ok {
		taken = taken.Merge(newer)
	}
	e.buffer.Set(id, taken)
	e.scheduler.Schedule(id)
}

// CommitStaffTypeLimit sets the limit for one staff type behind the same validation gate as
// Commit.
func (e *Engine) CommitStaffTypeLimit(ctx context.Context, staffType string, limit model.StaffTypeLimit, opts CommitOptions) (model.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return model.Settings{}, ErrClosed
	}
	key := constants.StaffTypeLimitKeyPrefix + staffType
	e.generations[key]++
	limit = normalizer.CanonicalStaffTypeLimit(limit)

	if e.onValidate != nil && !opts.SkipValidation {
		candidate := limit
		change := model.CandidateChange{StaffType: staffType, StaffTypeLimit: &candidate}
		if err := e.validateLocked(ctx, key, change); err != nil {
			return model.Settings{}, err
		}
	}
	e.settings.StaffTypeLimits[staffType] = limit
	return e.emitLocked(sourceLimit, key), nil
}

// Delete soft-deletes the rule. Its pending edit, timer and snapshot are purged, and deleting a
// staff group prunes the conflict rules and backup assignments that depend on it. A staged rule
// was never persisted and is simply dropped.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	rule, c, staged, ok := e.findLocked(id)
	if !ok {
		return ErrNotFound
	}
	if e.tombstones.IsTombstoned(id) {
		return ErrTombstoned
	}
	e.purgeLocked(id)
	if staged {
		e.stage.Discard(id)
		return nil
	}

	e.tombstones.MarkDeleted(id)
	rule.IsActive = false
	rule.IsLocalOnly = false
	e.replaceLocked(c, rule)
	if rule.Kind == model.KindStaffGroup {
		var pruned tombstone.Pruned
		e.settings, pruned = tombstone.PruneDependents(e.settings, id)
		for _, dependent := range pruned.RuleIDs {
			e.purgeLocked(dependent)
		}
		e.pruneStagedLocked(id)
		for _, assignment := range pruned.AssignmentIDs {
			e.tombstones.MarkAssignmentRemoved(assignment)
		}
		if !pruned.Empty() {
			e.logger.Info("Pruned records of deleted staff group", log.String("group_id", id),
				log.Strings("rule_ids", pruned.RuleIDs), log.Strings("assignment_ids", pruned.AssignmentIDs))
		}
	}
	e.recomputeLocked()
	e.emitLocked(sourceDelete, id)
	return nil
}

// AddBackupAssignment adds or replaces a backup assignment for an active staff group.
func (e *Engine) AddBackupAssignment(a model.BackupAssignment) (model.BackupAssignment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return model.BackupAssignment{}, ErrClosed
	}
	group, _, _, ok := e.settings.Find(a.GroupID)
	if !ok || group.Kind != model.KindStaffGroup || !group.IsActive || e.tombstones.IsTombstoned(a.GroupID) {
		return model.BackupAssignment{}, ErrNoGroup
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssignmentType == "" {
		a.AssignmentType = "regular"
	}
	replaced := false
	for i := range e.settings.BackupAssignments {
		if e.settings.BackupAssignments[i].ID == a.ID {
			e.settings.BackupAssignments[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		e.settings.BackupAssignments = append(e.settings.BackupAssignments, a)
	}
	e.emitLocked(sourceBackup, constants.BackupAssignmentKeyPrefix+a.ID)
	return a, nil
}

// RemoveBackupAssignment removes a backup assignment. The id is tombstoned so an echo that still
// carries it cannot bring it back.
func (e *Engine) RemoveBackupAssignment(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.tombstones.IsAssignmentRemoved(id) {
		return ErrNotFound
	}
	for i, a := range e.settings.BackupAssignments {
		if a.ID == id {
			e.settings.BackupAssignments = append(e.settings.BackupAssignments[:i:i], e.settings.BackupAssignments[i+1:]...)
			e.tombstones.MarkAssignmentRemoved(id)
			e.emitLocked(sourceBackup, constants.BackupAssignmentKeyPrefix+id)
			return nil
		}
	}
	return ErrNotFound
}

// SetRoster replaces the roster used for status targets and display names.
func (e *Engine) SetRoster(roster []model.StaffMember) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roster = append([]model.StaffMember(nil), roster...)
	e.detector = conflict.NewDetector(e.roster)
	e.recomputeLocked()
}

// Display returns the current view: active canonical and staged rules with buffered edits
// overlaid.
func (e *Engine) Display() model.DisplayModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayLocked()
}

func (e *Engine) Conflicts() []model.Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneConflicts(e.conflicts)
}

// Outbound returns the document that would be written downstream now.
func (e *Engine) Outbound() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outboundLocked()
}

// Tombstones returns the ids deleted in this session.
func (e *Engine) Tombstones() []string {
	return e.tombstones.IDs()
}

// Close stops every pending timer and drops pending edits. Later calls return ErrClosed and
// timers that were already due do nothing.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.scheduler.Close()
	e.buffer.Reset()
	e.snapshots = make(map[string]model.Rule)
}

func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// findLocked looks in the stage first, then in the canonical list.
func (e *Engine) findLocked(id string) (model.Rule, model.Collection, bool, bool) {
	if r, ok := e.stage.Get(id); ok {
		return r, model.CollectionFor(r.Kind), true, true
	}
	r, c, _, ok := e.settings.Find(id)
	return r, c, false, ok
}

func (e *Engine) editableLocked(id string) (model.Rule, error) {
	if e.closed {
		return model.Rule{}, ErrClosed
	}
	rule, _, _, ok := e.findLocked(id)
	if !ok {
		return model.Rule{}, ErrNotFound
	}
	if e.tombstones.IsTombstoned(id) || !rule.IsActive {
		return model.Rule{}, ErrTombstoned
	}
	return rule, nil
}

func (e *Engine) beginEditLocked(id string, rule model.Rule) {
	if _, ok := e.snapshots[id]; !ok {
		e.snapshots[id] = rule.Clone()
	}
}

func (e *Engine) purgeLocked(id string) {
	e.scheduler.Cancel(id)
	e.buffer.Clear(id)
	delete(e.snapshots, id)
	e.generations[id]++
}

// commitBufferedLocked moves the pending edit of the id into the canonical list.
func (e *Engine) commitBufferedLocked(id, source string) {
	patch, ok := e.buffer.Take(id)
	if !ok {
		return
	}
	rule, c, staged, found := e.findLocked(id)
	if !found || e.tombstones.IsTombstoned(id) {
		return
	}
	updated := e.normalizer.Canonicalize(patch.Apply(rule))
	if !e.writeLocked(c, updated, staged) {
		return
	}
	e.recomputeLocked()
	e.emitLocked(source, id)
}

// writeLocked stores a canonical rule and reports whether the downstream document changed.
// A staged rule is promoted once complete. A persisted rule that becomes incomplete stays in
// the canonical list flagged local-only, which keeps it out of outbound documents until fixed.
func (e *Engine) writeLocked(c model.Collection, rule model.Rule, staged bool) bool {
	complete := stage.IsComplete(rule)
	if staged {
		if !complete {
			e.stage.Hold(rule)
			return false
		}
		e.stage.Release(rule.ID)
		rule.IsLocalOnly = false
		e.settings.SetRules(c, append(e.settings.Rules(c), rule))
		e.logger.Debug("Promoted staged rule", log.String("rule_id", rule.ID))
		return true
	}
	rule.IsLocalOnly = !complete
	e.replaceLocked(c, rule)
	return true
}

func (e *Engine) replaceLocked(c model.Collection, rule model.Rule) {
	rules := e.settings.Rules(c)
	for i := range rules {
		if rules[i].ID == rule.ID {
			rules[i] = rule
			return
		}
	}
	e.settings.SetRules(c, append(rules, rule))
}

// pruneStagedLocked applies the dependents pruning of a deleted group to staged conflict rules.
func (e *Engine) pruneStagedLocked(groupID string) {
	for _, r := range e.stage.Rules() {
		if !r.Kind.IsGroupConflict() || !r.ReferencesGroup(groupID) {
			continue
		}
		if r.Kind == model.KindIntraGroupConflict {
			e.stage.Discard(r.ID)
			e.purgeLocked(r.ID)
			continue
		}
		remaining := make([]string, 0, len(r.GroupIDs))
		for _, g := range r.GroupIDs {
			if g != groupID {
				remaining = append(remaining, g)
			}
		}
		r.GroupIDs = remaining
		e.stage.Hold(r)
	}
}

func (e *Engine) mergeInboundLocked(raw map[string]interface{}, saved uint64) {
	if raw == nil {
		return
	}
	for key, revision := range e.unacked {
		if revision <= saved {
			delete(e.unacked, key)
		}
	}
	inbound := e.normalizer.NormalizeSettings(raw)
	for _, r := range inbound.AllRules() {
		if !r.IsActive {
			e.tombstones.MarkDeleted(r.ID)
		}
	}
	inbound = e.tombstones.AbsorbSettings(inbound)

	for _, c := range model.RuleCollections {
		current := e.settings.Rules(c)
		merged := make([]model.Rule, 0, len(current)+len(inbound.Rules(c)))
		index := make(map[string]int, len(current))
		for _, r := range current {
			index[r.ID] = len(merged)
			merged = append(merged, r)
		}
		for _, r := range inbound.Rules(c) {
			if e.stage.Contains(r.ID) {
				continue
			}
			if _, other, _, found := e.settings.Find(r.ID); found && other != c {
				continue
			}
			r.IsLocalOnly = r.IsActive && !stage.IsComplete(r)
			if i, ok := index[r.ID]; ok {
				if !r.IsActive {
					delete(e.unacked, r.ID)
				} else if !e.settleLocked(r.ID, sameRule(merged[i], r)) {
					continue
				}
				merged[i] = r
				continue
			}
			index[r.ID] = len(merged)
			merged = append(merged, r)
		}
		e.settings.SetRules(c, merged)
	}
	if _, ok := raw[constants.StaffTypeLimitsKey]; ok {
		e.settings.StaffTypeLimits = e.mergeStaffTypeLimitsLocked(inbound.StaffTypeLimits)
	}
	if _, ok := raw[constants.BackupAssignmentsKey]; ok {
		e.settings.BackupAssignments = e.mergeAssignmentsLocked(inbound.BackupAssignments)
	}
	e.settings, _ = e.tombstones.FilterOrphans(e.settings)
}

// settleLocked reports whether inbound data may overwrite the record under key. A record with an
// unacknowledged local commit is only overwritten by an echo of the committed value, which also
// acknowledges it.
func (e *Engine) settleLocked(key string, echoed bool) bool {
	if _, pending := e.unacked[key]; !pending {
		return true
	}
	if echoed {
		delete(e.unacked, key)
	}
	return echoed
}

func (e *Engine) mergeStaffTypeLimitsLocked(inbound map[string]model.StaffTypeLimit) map[string]model.StaffTypeLimit {
	merged := make(map[string]model.StaffTypeLimit, len(inbound))
	for staffType, limit := range inbound {
		merged[staffType] = limit
	}
	for staffType, local := range e.settings.StaffTypeLimits {
		remote, ok := inbound[staffType]
		if !e.settleLocked(constants.StaffTypeLimitKeyPrefix+staffType, ok && remote == local) {
			merged[staffType] = local
		}
	}
	return merged
}

func (e *Engine) mergeAssignmentsLocked(inbound []model.BackupAssignment) []model.BackupAssignment {
	local := make(map[string]model.BackupAssignment, len(e.settings.BackupAssignments))
	for _, a := range e.settings.BackupAssignments {
		local[a.ID] = a
	}
	merged := make([]model.BackupAssignment, 0, len(inbound))
	seen := make(map[string]bool, len(inbound))
	for _, a := range inbound {
		seen[a.ID] = true
		if mine, ok := local[a.ID]; ok && !e.settleLocked(constants.BackupAssignmentKeyPrefix+a.ID, mine == a) {
			a = mine
		}
		merged = append(merged, a)
	}
	for _, a := range e.settings.BackupAssignments {
		if _, pending := e.unacked[constants.BackupAssignmentKeyPrefix+a.ID]; pending && !seen[a.ID] {
			merged = append(merged, a)
		}
	}
	return merged
}

// sameRule compares two rules as the backend stores them.
func sameRule(a, b model.Rule) bool {
	a, b = a.Clone(), b.Clone()
	a.IsLocalOnly, b.IsLocalOnly = false, false
	return reflect.DeepEqual(a, b)
}

func (e *Engine) recomputeLocked() {
	e.conflicts = e.detector.Detect(tombstone.ListActive(e.settings.AllRules()))
}

// outboundLocked builds the downstream document: complete active rules plus tombstones.
func (e *Engine) outboundLocked() model.Settings {
	out, _ := e.tombstones.FilterOrphans(e.settings.Clone())
	for _, c := range model.RuleCollections {
		rules := out.Rules(c)
		complete, _ := stage.Partition(tombstone.ListActive(rules))
		send := make(map[string]bool, len(complete))
		for _, r := range complete {
			send[r.ID] = true
		}
		kept := make([]model.Rule, 0, len(rules))
		for _, r := range rules {
			if send[r.ID] || (!r.IsActive && !r.IsLocalOnly) {
				kept = append(kept, r)
			}
		}
		out.SetRules(c, kept)
	}
	return out
}

// emitLocked publishes the outbound document under a new revision. The record under key stays
// shielded from inbound data until that revision is known to be saved or is echoed back.
func (e *Engine) emitLocked(source, key string) model.Settings {
	payload := e.outboundLocked()
	revision := e.revisions.Add(1)
	e.unacked[key] = revision
	e.logger.Info("Committed settings", log.String("source", source), log.String("id", key),
		log.Uint64("revision", revision), log.Int("conflicts", len(e.conflicts)))
	if e.onCommit != nil {
		e.onCommit(payload.Clone(), revision)
	}
	return payload
}

// validateLocked releases the lock for the validator round-trip. It returns with the lock held.
func (e *Engine) validateLocked(ctx context.Context, key string, change model.CandidateChange) error {
	gen := e.generations[key]
	validate := e.onValidate

	e.mu.Unlock()
	violations, err := validate(ctx, change)
	e.mu.Lock()

	if e.closed {
		return ErrClosed
	}
	if e.generations[key] != gen {
		e.logger.Warn("Discarding superseded validation result", log.String("key", key))
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("validate %s: %w", key, err)
	}
	if len(violations) > 0 {
		return &ValidationError{RuleID: change.RuleID, StaffType: change.StaffType, Violations: violations}
	}
	return nil
}

func (e *Engine) displayLocked() model.DisplayModel {
	dm := model.DisplayModel{
		Collections:       make(map[model.Collection][]model.DisplayRule, len(model.RuleCollections)),
		StaffTypeLimits:   make(map[string]model.StaffTypeLimit, len(e.settings.StaffTypeLimits)),
		BackupAssignments: append([]model.BackupAssignment{}, e.settings.BackupAssignments...),
		Conflicts:         cloneConflicts(e.conflicts),
	}
	for k, v := range e.settings.StaffTypeLimits {
		dm.StaffTypeLimits[k] = v
	}
	staged := e.stage.Rules()
	for _, c := range model.RuleCollections {
		rules := tombstone.ListActive(e.settings.Rules(c))
		for _, s := range staged {
			if model.CollectionFor(s.Kind) == c && s.IsActive {
				rules = append(rules, s)
			}
		}
		out := make([]model.DisplayRule, 0, len(rules))
		for _, r := range rules {
			shown := e.buffer.Read(r.ID, r.Clone())
			out = append(out, model.DisplayRule{
				Rule:             shown,
				IsDirty:          e.buffer.Has(r.ID) || e.scheduler.Pending(r.ID),
				IncompleteReason: stage.Missing(shown),
				TargetNames:      e.targetNamesLocked(shown.Targets),
			})
		}
		dm.Collections[c] = out
	}
	return dm
}

func (e *Engine) targetNamesLocked(t model.Targets) []string {
	if t.All || len(t.StaffIDs) == 0 {
		return nil
	}
	names := make(map[string]string, len(e.roster))
	for _, m := range e.roster {
		names[m.ID] = m.Name
	}
	out := make([]string, 0, len(t.StaffIDs))
	for _, id := range t.StaffIDs {
		if name := names[id]; name != "" {
			out = append(out, name)
		} else {
			out = append(out, id)
		}
	}
	return out
}

// uniqueNameLocked picks a default name not used by any active rule of the collection.
func (e *Engine) uniqueNameLocked(c model.Collection, kind model.RuleKind) string {
	taken := make(map[string]bool)
	for _, r := range tombstone.ListActive(e.settings.Rules(c)) {
		taken[r.Name] = true
	}
	for _, r := range e.stage.Rules() {
		if model.CollectionFor(r.Kind) == c {
			taken[r.Name] = true
		}
	}
	base := "New " + strings.ReplaceAll(string(kind), "_", " ")
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s %d", base, i)
		if !taken[name] {
			return name
		}
	}
}

func cloneConflicts(in []model.Conflict) []model.Conflict {
	out := make([]model.Conflict, len(in))
	for i, c := range in {
		c.Days = append([]int{}, c.Days...)
		out[i] = c
	}
	return out
}
