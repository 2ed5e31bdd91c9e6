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

// RuleKind identifies the semantics of a rule record.
type RuleKind string

const (
	KindPreferredShift           RuleKind = "preferred_shift"
	KindAvoidShift               RuleKind = "avoid_shift"
	KindAvoidShiftWithExceptions RuleKind = "avoid_shift_with_exceptions"
	KindRequiredOff              RuleKind = "required_off"
	KindWeeklyLimit              RuleKind = "weekly_limit"
	KindMonthlyLimit             RuleKind = "monthly_limit"
	KindGroupConflict            RuleKind = "group_conflict"
	KindIntraGroupConflict       RuleKind = "intra_group_conflict"
	KindStaffGroup               RuleKind = "staff_group"
)

// AllKinds lists every supported kind.
var AllKinds = []RuleKind{
	KindPreferredShift,
	KindAvoidShift,
	KindAvoidShiftWithExceptions,
	KindRequiredOff,
	KindWeeklyLimit,
	KindMonthlyLimit,
	KindGroupConflict,
	KindIntraGroupConflict,
	KindStaffGroup,
}

func (k RuleKind) Valid() bool {
	for _, kind := range AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsPriority reports whether the kind expresses a per-day shift preference.
func (k RuleKind) IsPriority() bool {
	switch k {
	case KindPreferredShift, KindAvoidShift, KindAvoidShiftWithExceptions, KindRequiredOff:
		return true
	}
	return false
}

func (k RuleKind) IsLimit() bool {
	return k == KindWeeklyLimit || k == KindMonthlyLimit
}

func (k RuleKind) IsGroupConflict() bool {
	return k == KindGroupConflict || k == KindIntraGroupConflict
}

// ShiftType is a single cell value of the schedule.
type ShiftType string

const (
	ShiftEarly  ShiftType = "early"
	ShiftLate   ShiftType = "late"
	ShiftOff    ShiftType = "off"
	ShiftNormal ShiftType = "normal"
)

func (s ShiftType) Valid() bool {
	switch s {
	case ShiftEarly, ShiftLate, ShiftOff, ShiftNormal:
		return true
	}
	return false
}

// Targets selects the staff a rule applies to.
type Targets struct {
	All         bool     `json:"all" bson:"all"`
	StaffStatus string   `json:"staffStatus" bson:"staff_status"`
	StaffIDs    []string `json:"staffIds" bson:"staff_ids"`
}

func (t Targets) IsEmpty() bool {
	return !t.All && t.StaffStatus == "" && len(t.StaffIDs) == 0
}

// TemporalScope selects the days a rule applies to. DaysOfWeek uses 0 for Sunday.
type TemporalScope struct {
	DaysOfWeek     []int  `json:"daysOfWeek" bson:"days_of_week"`
	EffectiveFrom  string `json:"effectiveFrom" bson:"effective_from"`
	EffectiveUntil string `json:"effectiveUntil" bson:"effective_until"`
}

func (s TemporalScope) HasWindow() bool {
	return s.EffectiveFrom != "" || s.EffectiveUntil != ""
}

func (s TemporalScope) IsEmpty() bool {
	return len(s.DaysOfWeek) == 0 && !s.HasWindow()
}

type ShiftConstraint struct {
	ShiftType  ShiftType   `json:"shiftType" bson:"shift_type"`
	Exceptions []ShiftType `json:"exceptions" bson:"exceptions"`
}

// Strength tells the solver how much a rule matters.
type Strength struct {
	PriorityLevel    int     `json:"priorityLevel" bson:"priority_level"`
	IsHardConstraint bool    `json:"isHardConstraint" bson:"is_hard_constraint"`
	PenaltyWeight    float64 `json:"penaltyWeight" bson:"penalty_weight"`
}

const (
	MinPriorityLevel = 1
	MaxPriorityLevel = 5
)

// Limit bounds how often the constrained shift may occur per period.
type Limit struct {
	MaxCount int `json:"maxCount" bson:"max_count"`
	MinCount int `json:"minCount" bson:"min_count"`
}

// Rule is the canonical shape shared by priority rules, limits, conflict rules and staff groups.
// Staff groups keep their members in Targets.StaffIDs; conflict rules reference groups through GroupIDs.
type Rule struct {
	ID              string          `json:"id" bson:"id"`
	Kind            RuleKind        `json:"kind" bson:"kind"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description" bson:"description"`
	Targets         Targets         `json:"targets" bson:"targets"`
	TemporalScope   TemporalScope   `json:"temporalScope" bson:"temporal_scope"`
	ShiftConstraint ShiftConstraint `json:"shiftConstraint" bson:"shift_constraint"`
	Strength        Strength        `json:"strength" bson:"strength"`
	Limit           Limit           `json:"limit" bson:"limit"`
	GroupIDs        []string        `json:"groupIds" bson:"group_ids"`
	IsActive        bool            `json:"isActive" bson:"is_active"`
	IsLocalOnly     bool            `json:"isLocalOnly" bson:"is_local_only"`
}

// Clone returns a deep copy. Nil slices are replaced with empty ones.
func (r Rule) Clone() Rule {
	out := r
	out.Targets.StaffIDs = cloneStrings(r.Targets.StaffIDs)
	out.TemporalScope.DaysOfWeek = cloneInts(r.TemporalScope.DaysOfWeek)
	out.ShiftConstraint.Exceptions = cloneShifts(r.ShiftConstraint.Exceptions)
	out.GroupIDs = cloneStrings(r.GroupIDs)
	return out
}

// DisplayName falls back to the id when the rule is unnamed.
func (r Rule) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// ReferencesGroup reports whether a conflict rule points at the group.
func (r Rule) ReferencesGroup(groupID string) bool {
	for _, id := range r.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// StaffMember is an entry of the read-only roster.
type StaffMember struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Status string `json:"status" bson:"status"`
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func cloneShifts(in []ShiftType) []ShiftType {
	out := make([]ShiftType, len(in))
	copy(out, in)
	return out
}
