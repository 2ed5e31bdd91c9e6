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

package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Detector finds pairs of active priority rules that cannot both hold on the same day for
// the same staff. It is advisory: nothing is blocked on its output.
type Detector struct {
	byStatus map[string]map[string]bool
}

// NewDetector indexes the roster so that status targets can be compared with id targets.
func NewDetector(roster []model.StaffMember) *Detector {
	byStatus := make(map[string]map[string]bool)
	for _, m := range roster {
		if m.Status == "" {
			continue
		}
		if byStatus[m.Status] == nil {
			byStatus[m.Status] = make(map[string]bool)
		}
		byStatus[m.Status][m.ID] = true
	}
	return &Detector{byStatus: byStatus}
}

// Detect compares every pair of active priority rules. The result is sorted by rule ids and
// holds each unordered pair at most once.
func Detect(rules []model.Rule, roster []model.StaffMember) []model.Conflict {
	return NewDetector(roster).Detect(rules)
}

// Detect also reads the active staff groups among rules: a target naming a group id stands for
// the group's members.
func (d *Detector) Detect(rules []model.Rule) []model.Conflict {
	candidates := make([]model.Rule, 0, len(rules))
	groups := make(map[string][]string)
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		switch {
		case r.Kind.IsPriority():
			candidates = append(candidates, r)
		case r.Kind == model.KindStaffGroup:
			groups[r.ID] = r.Targets.StaffIDs
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	conflicts := []model.Conflict{}
	seen := make(map[[2]string]bool)
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if a.ID == b.ID {
				continue
			}
			c, ok := d.compare(a, b, groups)
			if !ok || seen[c.RuleIDs] {
				continue
			}
			seen[c.RuleIDs] = true
			conflicts = append(conflicts, c)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].RuleIDs[0] != conflicts[j].RuleIDs[0] {
			return conflicts[i].RuleIDs[0] < conflicts[j].RuleIDs[0]
		}
		return conflicts[i].RuleIDs[1] < conflicts[j].RuleIDs[1]
	})
	return conflicts
}

// compare expects a.ID < b.ID.
func (d *Detector) compare(a, b model.Rule, groups map[string][]string) (model.Conflict, bool) {
	shift, ok := opposed(a, b)
	if !ok {
		return model.Conflict{}, false
	}
	if !d.shareTarget(a.Targets, b.Targets, groups) {
		return model.Conflict{}, false
	}
	if !windowsOverlap(a.TemporalScope, b.TemporalScope) {
		return model.Conflict{}, false
	}
	days := intersectDays(effectiveDays(a.TemporalScope), effectiveDays(b.TemporalScope))
	if len(days) == 0 {
		return model.Conflict{}, false
	}
	return model.Conflict{
		RuleIDs:     [2]string{a.ID, b.ID},
		Description: describe(a, b, shift, days),
		Days:        days,
		ShiftType:   shift,
	}, true
}

// opposed reports the contested shift when one rule asks for what the other forbids.
func opposed(a, b model.Rule) (model.ShiftType, bool) {
	if shift, ok := opposedOneWay(a, b); ok {
		return shift, true
	}
	return opposedOneWay(b, a)
}

func opposedOneWay(a, b model.Rule) (model.ShiftType, bool) {
	sa, sb := a.ShiftConstraint.ShiftType, b.ShiftConstraint.ShiftType
	switch a.Kind {
	case model.KindPreferredShift:
		if sa != "" && isAvoid(b.Kind) && sb == sa {
			return sa, true
		}
	case model.KindRequiredOff:
		if b.Kind == model.KindPreferredShift && sb != "" && sb != model.ShiftOff {
			return sb, true
		}
		if isAvoid(b.Kind) && sb == model.ShiftOff {
			return model.ShiftOff, true
		}
	}
	return "", false
}

func isAvoid(kind model.RuleKind) bool {
	return kind == model.KindAvoidShift || kind == model.KindAvoidShiftWithExceptions
}

func (d *Detector) shareTarget(a, b model.Targets, groups map[string][]string) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	if a.All || b.All {
		return true
	}
	if a.StaffStatus != "" && a.StaffStatus == b.StaffStatus {
		return true
	}
	staffA := d.expand(a, groups)
	for id := range d.expand(b, groups) {
		if staffA[id] {
			return true
		}
	}
	return false
}

func (d *Detector) expand(t model.Targets, groups map[string][]string) map[string]bool {
	out := make(map[string]bool, len(t.StaffIDs))
	for _, id := range t.StaffIDs {
		out[id] = true
		for _, member := range groups[id] {
			out[member] = true
		}
	}
	for id := range d.byStatus[t.StaffStatus] {
		out[id] = true
	}
	return out
}

// effectiveDays treats a date window without explicit weekdays as covering every weekday.
func effectiveDays(s model.TemporalScope) []int {
	if len(s.DaysOfWeek) > 0 {
		return s.DaysOfWeek
	}
	if s.HasWindow() {
		return []int{0, 1, 2, 3, 4, 5, 6}
	}
	return nil
}

func intersectDays(a, b []int) []int {
	var in [7]bool
	for _, d := range a {
		if d >= 0 && d <= 6 {
			in[d] = true
		}
	}
	var both [7]bool
	for _, d := range b {
		if d >= 0 && d <= 6 && in[d] {
			both[d] = true
		}
	}
	out := []int{}
	for d, ok := range both {
		if ok {
			out = append(out, d)
		}
	}
	return out
}

// windowsOverlap compares "2006-01-02" dates lexically. Open ends extend indefinitely.
func windowsOverlap(a, b model.TemporalScope) bool {
	if !a.HasWindow() || !b.HasWindow() {
		return true
	}
	if a.EffectiveUntil != "" && b.EffectiveFrom != "" && a.EffectiveUntil < b.EffectiveFrom {
		return false
	}
	if b.EffectiveUntil != "" && a.EffectiveFrom != "" && b.EffectiveUntil < a.EffectiveFrom {
		return false
	}
	return true
}

func describe(a, b model.Rule, shift model.ShiftType, days []int) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = weekdayNames[d]
	}
	return fmt.Sprintf("%q and %q disagree about %s shifts on %s",
		a.DisplayName(), b.DisplayName(), shift, strings.Join(names, ", "))
}
