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

package normalizer

import (
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

// record is a raw settings record together with its legacy containers, in lookup order.
type record struct {
	scopes []map[string]interface{}
}

func newRecord(raw map[string]interface{}) record {
	scopes := []map[string]interface{}{raw}
	for _, name := range constants.LegacyContainers {
		nested, ok := raw[name].(map[string]interface{})
		if ok {
			scopes = append(scopes, nested)
		}
	}
	return record{scopes: scopes}
}

// lookup returns the first key of a single scope whose value coerces.
func lookup[T any](scope map[string]interface{}, coerce func(interface{}) (T, bool), keys ...string) (T, bool) {
	for _, key := range keys {
		value, found := utils.LookupPath(scope, key)
		if !found {
			continue
		}
		if out, ok := coerce(value); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

// resolve walks the top level first and then each legacy container.
func resolve[T any](r record, coerce func(interface{}) (T, bool), keys ...string) (T, bool) {
	for _, scope := range r.scopes {
		if out, ok := lookup(scope, coerce, keys...); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

var (
	idKeys          = []string{"id", "ruleId", "_id"}
	kindKeys        = []string{"kind", "ruleType", "type", "constraintType"}
	nameKeys        = []string{"name", "ruleName", "title", "label"}
	descriptionKeys = []string{"description", "desc"}
	dayKeys         = []string{"temporalScope.daysOfWeek", "daysOfWeek", "days", "weekdays", "dayOfWeek", "day"}
	fromKeys        = []string{"temporalScope.effectiveFrom", "effectiveFrom", "startDate", "validFrom", "effectivePeriod.from"}
	untilKeys       = []string{"temporalScope.effectiveUntil", "effectiveUntil", "endDate", "validUntil", "effectivePeriod.to"}
	shiftKeys       = []string{"shiftConstraint.shiftType", "shiftType", "shift", "preferredShift", "avoidShift", "targetShift"}
	exceptionKeys   = []string{"shiftConstraint.exceptions", "exceptions", "allowedShifts", "exceptionShifts"}
	priorityKeys    = []string{"strength.priorityLevel", "priorityLevel", "priority", "level"}
	hardKeys        = []string{"strength.isHardConstraint", "isHardConstraint", "isHard", "hardConstraint", "hard"}
	penaltyKeys     = []string{"strength.penaltyWeight", "penaltyWeight", "penalty", "weight"}
	maxKeys         = []string{"limit.maxCount", "maxCount", "max", "maxDays", "maxOffDays", "limit"}
	minKeys         = []string{"limit.minCount", "minCount", "min", "minDays"}
	groupKeys       = []string{"groupIds", "groups", "targetGroupIds", "conflictingGroups", "groupId", "targetGroupId"}
	activeKeys      = []string{"isActive", "active", "enabled"}
	deletedKeys     = []string{"isDeleted", "deleted"}
	localKeys       = []string{"isLocalOnly", "localOnly"}

	targetAllKeys    = []string{"applyToAll", "allStaff", "targetAll"}
	targetIDKeys     = []string{"staffIds", "targetStaffIds", "staffMembers", "members", "memberIds", "staffId", "targetStaffId"}
	targetStatusKeys = []string{"staffStatus", "targetStatus", "appliesTo", "applyTo"}
)

var kindAliases = map[string]model.RuleKind{
	"prefer":                     model.KindPreferredShift,
	"preferred":                  model.KindPreferredShift,
	"preference":                 model.KindPreferredShift,
	"preferred_shifts":           model.KindPreferredShift,
	"avoid":                      model.KindAvoidShift,
	"avoided_shift":              model.KindAvoidShift,
	"avoid_with_exceptions":      model.KindAvoidShiftWithExceptions,
	"avoid_shift_with_exception": model.KindAvoidShiftWithExceptions,
	"avoid_except":               model.KindAvoidShiftWithExceptions,
	"day_off":                    model.KindRequiredOff,
	"required_day_off":           model.KindRequiredOff,
	"requested_off":              model.KindRequiredOff,
	"weekly":                     model.KindWeeklyLimit,
	"weekly_off_limit":           model.KindWeeklyLimit,
	"monthly":                    model.KindMonthlyLimit,
	"monthly_off_limit":          model.KindMonthlyLimit,
	"conflict":                   model.KindGroupConflict,
	"inter_group_conflict":       model.KindGroupConflict,
	"cross_group_conflict":       model.KindGroupConflict,
	"intra_group":                model.KindIntraGroupConflict,
	"within_group_conflict":      model.KindIntraGroupConflict,
	"same_group_conflict":        model.KindIntraGroupConflict,
	"group":                      model.KindStaffGroup,
	"staff_groups":               model.KindStaffGroup,
}

var shiftAliases = map[string]model.ShiftType{
	"early":       model.ShiftEarly,
	"early_shift": model.ShiftEarly,
	"morning":     model.ShiftEarly,
	"△":           model.ShiftEarly,
	"late":        model.ShiftLate,
	"late_shift":  model.ShiftLate,
	"evening":     model.ShiftLate,
	"◇":           model.ShiftLate,
	"off":         model.ShiftOff,
	"day_off":     model.ShiftOff,
	"dayoff":      model.ShiftOff,
	"rest":        model.ShiftOff,
	"holiday":     model.ShiftOff,
	"×":           model.ShiftOff,
	"normal":      model.ShiftNormal,
	"regular":     model.ShiftNormal,
	"○":           model.ShiftNormal,
}

var dayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

var priorityWords = map[string]int{
	"lowest": 1, "low": 2, "medium": 3, "normal": 3, "high": 4, "highest": 5, "critical": 5,
}

// snakeCase turns "preferredShift", "Preferred Shift" and "preferred-shift" into "preferred_shift".
func snakeCase(s string) string {
	var b strings.Builder
	s = strings.TrimSpace(s)
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := s[i-1]
				if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func coerceKind(value interface{}) (model.RuleKind, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	key := snakeCase(s)
	if kind, ok := kindAliases[key]; ok {
		return kind, true
	}
	kind := model.RuleKind(key)
	return kind, kind.Valid()
}

func coerceShift(value interface{}) (model.ShiftType, bool) {
	s, ok := utils.CoerceToString(value)
	if !ok {
		return "", false
	}
	shift, ok := shiftAliases[snakeCase(s)]
	return shift, ok
}

// coerceShiftList keeps the recognised shifts in their given order.
func coerceShiftList(value interface{}) ([]model.ShiftType, bool) {
	items, ok := utils.CoerceToSlice(value)
	if !ok {
		return nil, false
	}
	seen := make(map[model.ShiftType]bool, len(items))
	out := make([]model.ShiftType, 0, len(items))
	for _, item := range items {
		shift, ok := coerceShift(item)
		if !ok || seen[shift] {
			continue
		}
		seen[shift] = true
		out = append(out, shift)
	}
	return out, true
}

func dayIndex(value interface{}) (int, bool) {
	if d, ok := utils.CoerceToInt(value); ok {
		if d == 7 {
			return 0, true
		}
		return d, d >= 0 && d <= 6
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	d, ok := dayNames[s[:3]]
	return d, ok
}

// coerceDays returns the recognised weekdays sorted and de-duplicated.
func coerceDays(value interface{}) ([]int, bool) {
	if s, ok := value.(string); ok && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		items := make([]interface{}, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		value = items
	}
	items, ok := utils.CoerceToSlice(value)
	if !ok {
		return nil, false
	}
	var set [7]bool
	for _, item := range items {
		if d, ok := dayIndex(item); ok {
			set[d] = true
		}
	}
	out := make([]int, 0, 7)
	for d, present := range set {
		if present {
			out = append(out, d)
		}
	}
	return out, true
}

func coercePriority(value interface{}) (int, bool) {
	if p, ok := utils.CoerceToInt(value); ok {
		return clampPriority(p), true
	}
	if f, ok := utils.CoerceToFloat(value); ok {
		return clampPriority(int(f + 0.5)), true
	}
	if s, ok := value.(string); ok {
		p, ok := priorityWords[strings.ToLower(strings.TrimSpace(s))]
		return p, ok
	}
	return 0, false
}

func clampPriority(p int) int {
	if p < model.MinPriorityLevel {
		return model.MinPriorityLevel
	}
	if p > model.MaxPriorityLevel {
		return model.MaxPriorityLevel
	}
	return p
}

func nonEmptyString(value interface{}) (string, bool) {
	s, ok := utils.CoerceToString(value)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func nonNegativeInt(value interface{}) (int, bool) {
	i, ok := utils.CoerceToInt(value)
	if !ok {
		return 0, false
	}
	if i < 0 {
		i = 0
	}
	return i, true
}

func nonNegativeFloat(value interface{}) (float64, bool) {
	f, ok := utils.CoerceToFloat(value)
	if !ok {
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	return f, true
}
