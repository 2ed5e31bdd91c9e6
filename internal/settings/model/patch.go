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

// RulePatch is a sparse set of field edits. A nil field is untouched.
type RulePatch struct {
	Name             *string      `json:"name,omitempty"`
	Description      *string      `json:"description,omitempty"`
	Targets          *Targets     `json:"targets,omitempty"`
	DaysOfWeek       *[]int       `json:"daysOfWeek,omitempty"`
	EffectiveFrom    *string      `json:"effectiveFrom,omitempty"`
	EffectiveUntil   *string      `json:"effectiveUntil,omitempty"`
	ShiftType        *ShiftType   `json:"shiftType,omitempty"`
	Exceptions       *[]ShiftType `json:"exceptions,omitempty"`
	PriorityLevel    *int         `json:"priorityLevel,omitempty"`
	IsHardConstraint *bool        `json:"isHardConstraint,omitempty"`
	PenaltyWeight    *float64     `json:"penaltyWeight,omitempty"`
	MaxCount         *int         `json:"maxCount,omitempty"`
	MinCount         *int         `json:"minCount,omitempty"`
	GroupIDs         *[]string    `json:"groupIds,omitempty"`
}

// Merge layers next over p. Fields set in next win.
func (p RulePatch) Merge(next RulePatch) RulePatch {
	out := p
	if next.Name != nil {
		out.Name = next.Name
	}
	if next.Description != nil {
		out.Description = next.Description
	}
	if next.Targets != nil {
		out.Targets = next.Targets
	}
	if next.DaysOfWeek != nil {
		out.DaysOfWeek = next.DaysOfWeek
	}
	if next.EffectiveFrom != nil {
		out.EffectiveFrom = next.EffectiveFrom
	}
	if next.EffectiveUntil != nil {
		out.EffectiveUntil = next.EffectiveUntil
	}
	if next.ShiftType != nil {
		out.ShiftType = next.ShiftType
	}
	if next.Exceptions != nil {
		out.Exceptions = next.Exceptions
	}
	if next.PriorityLevel != nil {
		out.PriorityLevel = next.PriorityLevel
	}
	if next.IsHardConstraint != nil {
		out.IsHardConstraint = next.IsHardConstraint
	}
	if next.PenaltyWeight != nil {
		out.PenaltyWeight = next.PenaltyWeight
	}
	if next.MaxCount != nil {
		out.MaxCount = next.MaxCount
	}
	if next.MinCount != nil {
		out.MinCount = next.MinCount
	}
	if next.GroupIDs != nil {
		out.GroupIDs = next.GroupIDs
	}
	return out
}

// Apply returns a copy of the rule with the patch fields written over it.
func (p RulePatch) Apply(r Rule) Rule {
	out := r.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Targets != nil {
		out.Targets = Targets{
			All:         p.Targets.All,
			StaffStatus: p.Targets.StaffStatus,
			StaffIDs:    cloneStrings(p.Targets.StaffIDs),
		}
	}
	if p.DaysOfWeek != nil {
		out.TemporalScope.DaysOfWeek = cloneInts(*p.DaysOfWeek)
	}
	if p.EffectiveFrom != nil {
		out.TemporalScope.EffectiveFrom = *p.EffectiveFrom
	}
	if p.EffectiveUntil != nil {
		out.TemporalScope.EffectiveUntil = *p.EffectiveUntil
	}
	if p.ShiftType != nil {
		out.ShiftConstraint.ShiftType = *p.ShiftType
	}
	if p.Exceptions != nil {
		out.ShiftConstraint.Exceptions = cloneShifts(*p.Exceptions)
	}
	if p.PriorityLevel != nil {
		out.Strength.PriorityLevel = *p.PriorityLevel
	}
	if p.IsHardConstraint != nil {
		out.Strength.IsHardConstraint = *p.IsHardConstraint
	}
	if p.PenaltyWeight != nil {
		out.Strength.PenaltyWeight = *p.PenaltyWeight
	}
	if p.MaxCount != nil {
		out.Limit.MaxCount = *p.MaxCount
	}
	if p.MinCount != nil {
		out.Limit.MinCount = *p.MinCount
	}
	if p.GroupIDs != nil {
		out.GroupIDs = cloneStrings(*p.GroupIDs)
	}
	return out
}

// Fields lists the names of the fields the patch sets, in declaration order.
func (p RulePatch) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.Name != nil, "name")
	add(p.Description != nil, "description")
	add(p.Targets != nil, "targets")
	add(p.DaysOfWeek != nil, "daysOfWeek")
	add(p.EffectiveFrom != nil, "effectiveFrom")
	add(p.EffectiveUntil != nil, "effectiveUntil")
	add(p.ShiftType != nil, "shiftType")
	add(p.Exceptions != nil, "exceptions")
	add(p.PriorityLevel != nil, "priorityLevel")
	add(p.IsHardConstraint != nil, "isHardConstraint")
	add(p.PenaltyWeight != nil, "penaltyWeight")
	add(p.MaxCount != nil, "maxCount")
	add(p.MinCount != nil, "minCount")
	add(p.GroupIDs != nil, "groupIds")
	return fields
}

func (p RulePatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// IsTextOnly reports whether the patch touches only free-text fields, which are debounced.
func (p RulePatch) IsTextOnly() bool {
	for _, f := range p.Fields() {
		if f != "name" && f != "description" {
			return false
		}
	}
	return !p.IsEmpty()
}
