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

import (
	"sort"

	settingsmodel "github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

// Schedule is the published shift schedule that limits are checked against.
// Assignments maps staff id to date ("2006-01-02") to the assigned shift.
type Schedule struct {
	Staff       []settingsmodel.StaffMember                   `json:"staff" bson:"staff"`
	Assignments map[string]map[string]settingsmodel.ShiftType `json:"assignments" bson:"assignments"`
}

// StaffIDs returns the ids of every staff member with the given status, or of everyone when
// status is empty.
func (s Schedule) StaffIDs(status string) []string {
	ids := make([]string, 0, len(s.Staff))
	for _, m := range s.Staff {
		if status == "" || m.Status == status {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Dates returns the assigned dates of a staff member in ascending order.
func (s Schedule) Dates(staffID string) []string {
	days := s.Assignments[staffID]
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func (s Schedule) ShiftOn(staffID, date string) (settingsmodel.ShiftType, bool) {
	shift, ok := s.Assignments[staffID][date]
	return shift, ok
}
