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
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func TestNormalize_LegacyFlatRecord(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{
		"id":       "r1",
		"ruleType": "avoidShift",
		"staffId":  "s1",
		"days":     []interface{}{"monday", "Wed", "monday"},
		"shift":    "early",
		"priority": "high",
		"ruleName": "No early starts",
	}

	got := n.Normalize(raw, model.KindPreferredShift)

	want := model.Rule{
		ID:              "r1",
		Kind:            model.KindAvoidShift,
		Name:            "No early starts",
		Targets:         model.Targets{StaffIDs: []string{"s1"}},
		TemporalScope:   model.TemporalScope{DaysOfWeek: []int{1, 3}},
		ShiftConstraint: model.ShiftConstraint{ShiftType: model.ShiftEarly, Exceptions: []model.ShiftType{}},
		Strength:        model.Strength{PriorityLevel: 4, IsHardConstraint: false, PenaltyWeight: 10},
		GroupIDs:        []string{},
		IsActive:        true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ContainerPrecedence(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{
		"id":   "r2",
		"kind": "preferred_shift",
		"name": "top level",
		"ruleDefinition": map[string]interface{}{
			"name":       "definition",
			"daysOfWeek": []interface{}{1},
		},
		"ruleConfig": map[string]interface{}{
			"daysOfWeek": []interface{}{2},
			"shiftType":  "late",
			"staffIds":   []interface{}{"s9"},
		},
	}

	got := n.Normalize(raw, "")

	assert.Equal(t, "top level", got.Name, "top-level field beats every container")
	assert.Equal(t, []int{1}, got.TemporalScope.DaysOfWeek, "ruleDefinition beats ruleConfig")
	assert.Equal(t, model.ShiftLate, got.ShiftConstraint.ShiftType, "ruleConfig used when nothing earlier has the field")
	assert.Equal(t, []string{"s9"}, got.Targets.StaffIDs)
}

func TestNormalize_MalformedInputFallsBackToDefaults(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{
		"id":             "r3",
		"kind":           "required_off",
		"ruleDefinition": "not an object",
		"ruleConfig":     []interface{}{1, 2},
		"daysOfWeek":     "garbage",
		"priority":       map[string]interface{}{"x": 1},
		"penaltyWeight":  "heavy",
		"effectiveFrom":  "someday",
	}

	require.NotPanics(t, func() { n.Normalize(raw, "") })
	got := n.Normalize(raw, "")

	assert.Equal(t, model.KindRequiredOff, got.Kind)
	assert.Equal(t, []int{}, got.TemporalScope.DaysOfWeek)
	assert.Equal(t, model.ShiftOff, got.ShiftConstraint.ShiftType)
	assert.Equal(t, model.Strength{PriorityLevel: 5, IsHardConstraint: true, PenaltyWeight: 100}, got.Strength)
	assert.Empty(t, got.TemporalScope.EffectiveFrom)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(nil)
	inputs := map[string]map[string]interface{}{
		"legacy priority": {
			"ruleType": "preferred", "targetStaffIds": []interface{}{"a", "b"}, "weekdays": []interface{}{0, 6},
			"shift": "△", "isHard": "yes", "weight": "25",
		},
		"nested limit": {
			"id": "wl", "ruleDefinition": map[string]interface{}{"maxOffDays": 2.0, "appliesTo": "all"},
		},
		"avoid with exceptions": {
			"id": "ax", "type": "avoid_with_exceptions", "shiftType": "early",
			"allowedShifts": []interface{}{"late", "bogus", "late"}, "startDate": "2026-04-01T00:00:00Z",
			"endDate": "2026-04-30", "priority": 9,
		},
		"staff group":      {"id": "g1", "members": []interface{}{"s1", "s2"}, "name": "Kitchen"},
		"deleted conflict": {"id": "c1", "kind": "group_conflict", "groupIds": []interface{}{"g1", "g2"}, "isDeleted": true},
		"empty":            {},
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			once := n.Normalize(raw, model.KindWeeklyLimit)
			twice := n.Normalize(ToRaw(once), model.KindWeeklyLimit)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("normalization is not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestNormalize_DerivedIDsAreStable(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{"kind": "preferred_shift", "staffIds": []interface{}{"s1"}}
	other := map[string]interface{}{"kind": "preferred_shift", "staffIds": []interface{}{"s2"}}

	first := n.Normalize(raw, "")
	second := n.Normalize(raw, "")

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, n.Normalize(other, "").ID)
}

func TestNormalize_ValueClamping(t *testing.T) {
	n := New(nil)
	assert.Equal(t, 5, n.Normalize(map[string]interface{}{"id": "a", "priority": 9}, "").Strength.PriorityLevel)
	assert.Equal(t, 1, n.Normalize(map[string]interface{}{"id": "a", "priority": -3}, "").Strength.PriorityLevel)
	assert.Equal(t, 0.0, n.Normalize(map[string]interface{}{"id": "a", "penalty": -3}, "").Strength.PenaltyWeight)
	assert.Equal(t, []int{0, 6}, n.Normalize(map[string]interface{}{"id": "a", "days": []interface{}{7, 6, 12, "sat"}}, "").TemporalScope.DaysOfWeek)
	assert.Equal(t, []int{1, 2}, n.Normalize(map[string]interface{}{"id": "a", "days": "mon,tue"}, "").TemporalScope.DaysOfWeek)
}

func TestNormalize_LimitDefaults(t *testing.T) {
	n := New(nil)
	got := n.Normalize(map[string]interface{}{"id": "m1"}, model.KindMonthlyLimit)

	assert.Equal(t, model.KindMonthlyLimit, got.Kind)
	assert.True(t, got.Targets.All)
	assert.Equal(t, 8, got.Limit.MaxCount)
	assert.Equal(t, model.ShiftOff, got.ShiftConstraint.ShiftType)
}

func TestNormalize_StrengthDefaultsOverride(t *testing.T) {
	table := model.DefaultKindDefaults()
	table[model.KindPreferredShift] = model.KindDefaults{Strength: model.Strength{PriorityLevel: 2, PenaltyWeight: 7}}
	n := New(table)

	got := n.Normalize(map[string]interface{}{"id": "p"}, model.KindPreferredShift)
	assert.Equal(t, model.Strength{PriorityLevel: 2, PenaltyWeight: 7}, got.Strength)
}

func TestNormalizeSettings(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{
		"priorityRules": []interface{}{
			map[string]interface{}{"id": "p1", "kind": "preferred_shift", "name": "old"},
			"not a record",
			map[string]interface{}{"id": "p2", "kind": "weekly_limit"},
			map[string]interface{}{"id": "p1", "kind": "preferred_shift", "name": "new"},
		},
		"groups": map[string]interface{}{
			"g2": map[string]interface{}{"name": "Floor", "members": []interface{}{"s3"}},
			"g1": map[string]interface{}{"name": "Kitchen", "members": []interface{}{"s1"}},
		},
		"staffTypeLimits": map[string]interface{}{
			"part-time": map[string]interface{}{"maxOffDays": "3", "maxEarly": 1},
			"broken":    "x",
		},
		"backupAssignments": []interface{}{
			map[string]interface{}{"id": "b1", "staff_id": "s5", "group_id": "g1"},
		},
	}

	got := n.NormalizeSettings(raw)

	require.Len(t, got.PriorityRules, 2)
	assert.Equal(t, "p1", got.PriorityRules[0].ID)
	assert.Equal(t, "new", got.PriorityRules[0].Name, "duplicates keep the last content")
	assert.Equal(t, model.KindPreferredShift, got.PriorityRules[1].Kind, "kinds foreign to the collection are replaced")

	require.Len(t, got.StaffGroups, 2)
	assert.Equal(t, "g1", got.StaffGroups[0].ID, "object collections are read in key order with the key as id")
	assert.Equal(t, []string{"s1"}, got.StaffGroups[0].Targets.StaffIDs)

	assert.Equal(t, model.StaffTypeLimit{MaxOff: 3, MaxEarly: 1, PenaltyWeight: 50}, got.StaffTypeLimits["part-time"])
	assert.NotContains(t, got.StaffTypeLimits, "broken")

	require.Len(t, got.BackupAssignments, 1)
	assert.Equal(t, model.BackupAssignment{ID: "b1", StaffID: "s5", GroupID: "g1", AssignmentType: "regular", PriorityOrder: 1}, got.BackupAssignments[0])

	assert.Empty(t, got.WeeklyLimits)
	assert.NotNil(t, got.MonthlyLimits)
}

func TestSettingsRoundTrip(t *testing.T) {
	n := New(nil)
	raw := map[string]interface{}{
		"weeklyLimits": []interface{}{map[string]interface{}{"id": "w1", "max": 3}},
		"staffGroups":  []interface{}{map[string]interface{}{"id": "g1", "members": []interface{}{"a"}}},
	}
	once := n.NormalizeSettings(raw)
	twice := n.NormalizeSettings(SettingsToRaw(once))
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("settings normalization is not idempotent (-once +twice):\n%s", diff)
	}
}
