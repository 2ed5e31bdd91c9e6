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

// KindDefaults are the values a rule of the kind takes when a field is absent.
type KindDefaults struct {
	Strength  Strength
	Limit     Limit
	ShiftType ShiftType
	// TargetAll makes a new rule apply to all staff unless narrowed.
	TargetAll bool
}

// KindDefaultsTable maps each kind to its defaults.
type KindDefaultsTable map[RuleKind]KindDefaults

// DefaultKindDefaults returns the built-in defaults. Required days off are hard
// and weigh the most; preferences are soft; limits sit in between.
func DefaultKindDefaults() KindDefaultsTable {
	return KindDefaultsTable{
		KindPreferredShift: {
			Strength: Strength{PriorityLevel: 3, IsHardConstraint: false, PenaltyWeight: 10},
		},
		KindAvoidShift: {
			Strength: Strength{PriorityLevel: 3, IsHardConstraint: false, PenaltyWeight: 10},
		},
		KindAvoidShiftWithExceptions: {
			Strength: Strength{PriorityLevel: 3, IsHardConstraint: false, PenaltyWeight: 10},
		},
		KindRequiredOff: {
			Strength:  Strength{PriorityLevel: 5, IsHardConstraint: true, PenaltyWeight: 100},
			ShiftType: ShiftOff,
		},
		KindWeeklyLimit: {
			Strength:  Strength{PriorityLevel: 4, IsHardConstraint: true, PenaltyWeight: 50},
			Limit:     Limit{MaxCount: 2},
			ShiftType: ShiftOff,
			TargetAll: true,
		},
		KindMonthlyLimit: {
			Strength:  Strength{PriorityLevel: 4, IsHardConstraint: false, PenaltyWeight: 50},
			Limit:     Limit{MaxCount: 8},
			ShiftType: ShiftOff,
			TargetAll: true,
		},
		KindGroupConflict: {
			Strength: Strength{PriorityLevel: 4, IsHardConstraint: true, PenaltyWeight: 100},
		},
		KindIntraGroupConflict: {
			Strength: Strength{PriorityLevel: 4, IsHardConstraint: true, PenaltyWeight: 100},
		},
		KindStaffGroup: {
			Strength: Strength{PriorityLevel: 3},
		},
	}
}

// For returns the defaults of the kind, falling back to the built-in table.
func (t KindDefaultsTable) For(kind RuleKind) KindDefaults {
	if d, ok := t[kind]; ok {
		return d
	}
	return DefaultKindDefaults()[kind]
}

// DefaultStaffTypeLimit is applied to staff types that have no explicit entry.
var DefaultStaffTypeLimit = StaffTypeLimit{MaxOff: 0, MaxEarly: 0, IsHard: false, PenaltyWeight: 50}
