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

package model

// Collection names a rule list of the settings document.
type Collection string

const (
	CollectionPriorityRules Collection = "priorityRules"
	CollectionStaffGroups   Collection = "staffGroups"
	CollectionConflictRules Collection = "conflictRules"
	CollectionWeeklyLimits  Collection = "weeklyLimits"
	CollectionMonthlyLimits Collection = "monthlyLimits"
)

// RuleCollections lists the rule collections in document order.
var RuleCollections = []Collection{
	CollectionPriorityRules,
	CollectionStaffGroups,
	CollectionConflictRules,
	CollectionWeeklyLimits,
	CollectionMonthlyLimits,
}

func (c Collection) Valid() bool {
	for _, col := range RuleCollections {
		if c == col {
			return true
		}
	}
	return false
}

// DefaultKind is the kind assumed for records of the collection that carry none.
func (c Collection) DefaultKind() RuleKind {
	switch c {
	case CollectionStaffGroups:
		return KindStaffGroup
	case CollectionConflictRules:
		return KindGroupConflict
	case CollectionWeeklyLimits:
		return KindWeeklyLimit
	case CollectionMonthlyLimits:
		return KindMonthlyLimit
	default:
		return KindPreferredShift
	}
}

// Accepts reports whether a rule of the kind may live in the collection.
func (c Collection) Accepts(kind RuleKind) bool {
	return CollectionFor(kind) == c
}

// CollectionFor returns the collection a rule of the kind is stored in.
func CollectionFor(kind RuleKind) Collection {
	switch {
	case kind == KindStaffGroup:
		return CollectionStaffGroups
	case kind.IsGroupConflict():
		return CollectionConflictRules
	case kind == KindWeeklyLimit:
		return CollectionWeeklyLimits
	case kind == KindMonthlyLimit:
		return CollectionMonthlyLimits
	default:
		return CollectionPriorityRules
	}
}

// StaffTypeLimit caps off days and early shifts for every staff member of one status.
type StaffTypeLimit struct {
	MaxOff        int     `json:"maxOff" bson:"max_off"`
	MaxEarly      int     `json:"maxEarly" bson:"max_early"`
	IsHard        bool    `json:"isHard" bson:"is_hard"`
	PenaltyWeight float64 `json:"penaltyWeight" bson:"penalty_weight"`
}

// BackupAssignment names a staff member who covers for a group.
type BackupAssignment struct {
	ID             string `json:"id" bson:"id"`
	StaffID        string `json:"staffId" bson:"staff_id"`
	GroupID        string `json:"groupId" bson:"group_id"`
	AssignmentType string `json:"assignmentType" bson:"assignment_type"`
	PriorityOrder  int    `json:"priorityOrder" bson:"priority_order"`
	Notes          string `json:"notes" bson:"notes"`
}

// Settings is the canonical settings document exchanged with the backend.
type Settings struct {
	PriorityRules     []Rule                    `json:"priorityRules" bson:"priority_rules"`
	StaffGroups       []Rule                    `json:"staffGroups" bson:"staff_groups"`
	ConflictRules     []Rule                    `json:"conflictRules" bson:"conflict_rules"`
	WeeklyLimits      []Rule                    `json:"weeklyLimits" bson:"weekly_limits"`
	MonthlyLimits     []Rule                    `json:"monthlyLimits" bson:"monthly_limits"`
	StaffTypeLimits   map[string]StaffTypeLimit `json:"staffTypeLimits" bson:"staff_type_limits"`
	BackupAssignments []BackupAssignment        `json:"backupAssignments" bson:"backup_assignments"`
}

// NewSettings returns an empty document with every collection allocated.
func NewSettings() Settings {
	return Settings{
		PriorityRules:     []Rule{},
		StaffGroups:       []Rule{},
		ConflictRules:     []Rule{},
		WeeklyLimits:      []Rule{},
		MonthlyLimits:     []Rule{},
		StaffTypeLimits:   map[string]StaffTypeLimit{},
		BackupAssignments: []BackupAssignment{},
	}
}

func (s *Settings) Rules(c Collection) []Rule {
	switch c {
	case CollectionPriorityRules:
		return s.PriorityRules
	case CollectionStaffGroups:
		return s.StaffGroups
	case CollectionConflictRules:
		return s.ConflictRules
	case CollectionWeeklyLimits:
		return s.WeeklyLimits
	case CollectionMonthlyLimits:
		return s.MonthlyLimits
	}
	return nil
}

func (s *Settings) SetRules(c Collection, rules []Rule) {
	if rules == nil {
		rules = []Rule{}
	}
	switch c {
	case CollectionPriorityRules:
		s.PriorityRules = rules
	case CollectionStaffGroups:
		s.StaffGroups = rules
	case CollectionConflictRules:
		s.ConflictRules = rules
	case CollectionWeeklyLimits:
		s.WeeklyLimits = rules
	case CollectionMonthlyLimits:
		s.MonthlyLimits = rules
	}
}

// AllRules concatenates every rule collection in document order.
func (s *Settings) AllRules() []Rule {
	var out []Rule
	for _, c := range RuleCollections {
		out = append(out, s.Rules(c)...)
	}
	return out
}

// Find locates a rule by id across all collections.
func (s *Settings) Find(id string) (Rule, Collection, int, bool) {
	for _, c := range RuleCollections {
		for i, r := range s.Rules(c) {
			if r.ID == id {
				return r, c, i, true
			}
		}
	}
	return Rule{}, "", -1, false
}

// Clone returns a deep copy of the document.
func (s Settings) Clone() Settings {
	out := NewSettings()
	for _, c := range RuleCollections {
		src := s.Rules(c)
		rules := make([]Rule, len(src))
		for i := range src {
			rules[i] = src[i].Clone()
		}
		out.SetRules(c, rules)
	}
	for k, v := range s.StaffTypeLimits {
		out.StaffTypeLimits[k] = v
	}
	out.BackupAssignments = append(out.BackupAssignments, s.BackupAssignments...)
	return out
}
