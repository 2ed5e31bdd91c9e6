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

// Conflict is an advisory pair of rules that cannot both be satisfied on the listed days.
// RuleIDs is ordered so that RuleIDs[0] < RuleIDs[1].
type Conflict struct {
	RuleIDs     [2]string `json:"ruleIds"`
	Description string    `json:"description"`
	Days        []int     `json:"days"`
	ShiftType   ShiftType `json:"shiftType"`
}

// Violation describes one period in the live schedule that a candidate limit would break.
type Violation struct {
	StaffID string    `json:"staffId"`
	Period  string    `json:"period"`
	Shift   ShiftType `json:"shiftType"`
	Actual  int       `json:"actual"`
	Limit   int       `json:"limit"`
	Message string    `json:"message"`
}

// CandidateChange is handed to the host validator before a limit is committed.
// Exactly one of Rule or StaffTypeLimit is set.
type CandidateChange struct {
	RuleID         string          `json:"ruleId,omitempty"`
	Before         *Rule           `json:"before,omitempty"`
	Rule           *Rule           `json:"rule,omitempty"`
	StaffType      string          `json:"staffType,omitempty"`
	StaffTypeLimit *StaffTypeLimit `json:"staffTypeLimit,omitempty"`
}

// DisplayRule is a rule as the settings UI should render it: canonical data with buffered
// edits overlaid, plus the reasons it cannot be saved yet.
type DisplayRule struct {
	Rule
	IsDirty          bool     `json:"isDirty"`
	IncompleteReason []string `json:"incompleteReasons,omitempty"`
	TargetNames      []string `json:"targetNames,omitempty"`
}

// DisplayModel is the full view handed back to the host after every mutation.
type DisplayModel struct {
	Collections       map[Collection][]DisplayRule `json:"collections"`
	StaffTypeLimits   map[string]StaffTypeLimit    `json:"staffTypeLimits"`
	BackupAssignments []BackupAssignment           `json:"backupAssignments"`
	Conflicts         []Conflict                   `json:"conflicts"`
}

// Rule returns the displayed rule with the id, if any.
func (d DisplayModel) Rule(id string) (DisplayRule, bool) {
	for _, c := range RuleCollections {
		for _, r := range d.Collections[c] {
			if r.ID == id {
				return r, true
			}
		}
	}
	return DisplayRule{}, false
}
