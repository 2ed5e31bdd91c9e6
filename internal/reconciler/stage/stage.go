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

package stage

import (
	"sync"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

// Reasons shown next to a rule that cannot be saved yet.
const (
	ReasonNoTargets     = "at least one staff member must be selected"
	ReasonNoDays        = "at least one day must be selected"
	ReasonNoMembers     = "the group must have at least one member"
	ReasonTwoGroups     = "at least two groups must be selected"
	ReasonOneGroup      = "a group must be selected"
	ReasonInvalidWindow = "the effective period must not end before it starts"
)

// Requirement lists what a rule of a kind needs before it may be written downstream.
type Requirement struct {
	Targets   bool
	Temporal  bool
	Members   bool
	MinGroups int
}

// RequirementFor returns the completeness requirement of the kind.
func RequirementFor(kind model.RuleKind) Requirement {
	switch {
	case kind.IsPriority():
		return Requirement{Targets: true, Temporal: true}
	case kind.IsLimit():
		return Requirement{Targets: true}
	case kind == model.KindStaffGroup:
		return Requirement{Members: true}
	case kind == model.KindGroupConflict:
		return Requirement{MinGroups: 2}
	case kind == model.KindIntraGroupConflict:
		return Requirement{MinGroups: 1}
	}
	return Requirement{}
}

// Missing returns the reasons the rule is incomplete, or nil when it is complete.
func Missing(rule model.Rule) []string {
	req := RequirementFor(rule.Kind)
	var reasons []string
	if req.Targets && rule.Targets.IsEmpty() {
		reasons = append(reasons, ReasonNoTargets)
	}
	if req.Members && len(rule.Targets.StaffIDs) == 0 {
		reasons = append(reasons, ReasonNoMembers)
	}
	if req.Temporal && rule.TemporalScope.IsEmpty() {
		reasons = append(reasons, ReasonNoDays)
	}
	if from, until := rule.TemporalScope.EffectiveFrom, rule.TemporalScope.EffectiveUntil; from != "" && until != "" && until < from {
		reasons = append(reasons, ReasonInvalidWindow)
	}
	if len(rule.GroupIDs) < req.MinGroups {
		if req.MinGroups > 1 {
			reasons = append(reasons, ReasonTwoGroups)
		} else {
			reasons = append(reasons, ReasonOneGroup)
		}
	}
	return reasons
}

func IsComplete(rule model.Rule) bool {
	return len(Missing(rule)) == 0
}

// Partition splits rules into those that may be written downstream and those that must stay
// local. Returned rules carry IsLocalOnly accordingly.
func Partition(rules []model.Rule) (complete, incomplete []model.Rule) {
	for _, r := range rules {
		r = r.Clone()
		if r.IsLocalOnly || !IsComplete(r) {
			r.IsLocalOnly = true
			incomplete = append(incomplete, r)
			continue
		}
		complete = append(complete, r)
	}
	return complete, incomplete
}

// Stage holds rules that are not yet complete enough to persist. Staged rules take part in
// display but never in a downstream payload.
type Stage struct {
	mu    sync.RWMutex
	rules map[string]model.Rule
	order []string
}

func New() *Stage {
	return &Stage{rules: make(map[string]model.Rule)}
}

// Hold stores or replaces the rule, marking it local-only.
func (s *Stage) Hold(rule model.Rule) model.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule = rule.Clone()
	rule.IsLocalOnly = true
	if _, ok := s.rules[rule.ID]; !ok {
		s.order = append(s.order, rule.ID)
	}
	s.rules[rule.ID] = rule
	return rule
}

func (s *Stage) Get(id string) (model.Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	return r, ok
}

func (s *Stage) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Release removes the rule from the stage and returns it ready to persist.
func (s *Stage) Release(id string) (model.Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return model.Rule{}, false
	}
	s.remove(id)
	r.IsLocalOnly = false
	return r, true
}

// Discard drops the rule without persisting it.
func (s *Stage) Discard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return false
	}
	s.remove(id)
	return true
}

// Rules returns the staged rules in the order they were first held.
func (s *Stage) Rules() []model.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Rule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id])
	}
	return out
}

func (s *Stage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Stage) remove(id string) {
	delete(s.rules, id)
	for i, staged := range s.order {
		if staged == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
