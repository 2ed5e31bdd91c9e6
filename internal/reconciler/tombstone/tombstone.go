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

package tombstone

import (
	"sort"
	"sync"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

// Reconciler remembers every rule deleted and every backup assignment removed in this session.
// A tombstoned id stays inactive whatever later inbound data claims, so stale echoes cannot
// resurrect it.
type Reconciler struct {
	mu          sync.RWMutex
	tombstones  map[string]struct{}
	assignments map[string]struct{}
}

func New() *Reconciler {
	return &Reconciler{
		tombstones:  make(map[string]struct{}),
		assignments: make(map[string]struct{}),
	}
}

// MarkAssignmentRemoved tombstones a backup assignment id.
func (r *Reconciler) MarkAssignmentRemoved(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[id] = struct{}{}
}

func (r *Reconciler) IsAssignmentRemoved(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.assignments[id]
	return ok
}

func (r *Reconciler) MarkDeleted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tombstones[id] = struct{}{}
}

func (r *Reconciler) IsTombstoned(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tombstones[id]
	return ok
}

// IDs returns the tombstoned ids in lexical order.
func (r *Reconciler) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tombstones))
	for id := range r.tombstones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListActive filters out inactive rules. It is the only view any display or conflict
// computation may use.
func ListActive(rules []model.Rule) []model.Rule {
	out := make([]model.Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	return out
}

// Absorb returns a copy of an inbound batch with every tombstoned id forced inactive.
func (r *Reconciler) Absorb(rules []model.Rule) []model.Rule {
	out := make([]model.Rule, len(rules))
	for i, rule := range rules {
		rule = rule.Clone()
		if r.IsTombstoned(rule.ID) {
			rule.IsActive = false
		}
		out[i] = rule
	}
	return out
}

// AbsorbSettings applies Absorb to every rule collection and then FilterOrphans.
func (r *Reconciler) AbsorbSettings(settings model.Settings) model.Settings {
	out := settings.Clone()
	for _, c := range model.RuleCollections {
		out.SetRules(c, r.Absorb(out.Rules(c)))
	}
	out, _ = r.FilterOrphans(out)
	return out
}

// FilterOrphans drops removed backup assignments and prunes records that depend on any
// tombstoned or inactive staff group.
func (r *Reconciler) FilterOrphans(settings model.Settings) (model.Settings, Pruned) {
	var total Pruned
	kept := make([]model.BackupAssignment, 0, len(settings.BackupAssignments))
	for _, a := range settings.BackupAssignments {
		if r.IsAssignmentRemoved(a.ID) {
			total.AssignmentIDs = append(total.AssignmentIDs, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	settings.BackupAssignments = kept
	for _, group := range settings.StaffGroups {
		if group.IsActive && !r.IsTombstoned(group.ID) {
			continue
		}
		var pruned Pruned
		settings, pruned = PruneDependents(settings, group.ID)
		total.RuleIDs = append(total.RuleIDs, pruned.RuleIDs...)
		total.AssignmentIDs = append(total.AssignmentIDs, pruned.AssignmentIDs...)
	}
	return settings, total
}

// Pruned lists what PruneDependents removed.
type Pruned struct {
	RuleIDs       []string
	AssignmentIDs []string
}

func (p Pruned) Empty() bool {
	return len(p.RuleIDs) == 0 && len(p.AssignmentIDs) == 0
}

// PruneDependents removes everything that only made sense with the group present: intra-group
// conflict rules on it, group conflicts left with fewer than two groups, and backup
// assignments to it. Group conflicts that still name two or more groups just lose the reference.
func PruneDependents(settings model.Settings, groupID string) (model.Settings, Pruned) {
	var pruned Pruned
	kept := make([]model.Rule, 0, len(settings.ConflictRules))
	for _, rule := range settings.ConflictRules {
		if !rule.ReferencesGroup(groupID) {
			kept = append(kept, rule)
			continue
		}
		remaining := make([]string, 0, len(rule.GroupIDs))
		for _, id := range rule.GroupIDs {
			if id != groupID {
				remaining = append(remaining, id)
			}
		}
		if rule.Kind == model.KindGroupConflict && len(remaining) >= 2 {
			rule = rule.Clone()
			rule.GroupIDs = remaining
			kept = append(kept, rule)
			continue
		}
		pruned.RuleIDs = append(pruned.RuleIDs, rule.ID)
	}
	settings.ConflictRules = kept

	assignments := make([]model.BackupAssignment, 0, len(settings.BackupAssignments))
	for _, a := range settings.BackupAssignments {
		if a.GroupID == groupID {
			pruned.AssignmentIDs = append(pruned.AssignmentIDs, a.ID)
			continue
		}
		assignments = append(assignments, a)
	}
	settings.BackupAssignments = assignments
	return settings, pruned
}
