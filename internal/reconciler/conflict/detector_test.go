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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

func rule(id string, kind model.RuleKind, shift model.ShiftType, targets model.Targets, days ...int) model.Rule {
	return model.Rule{
		ID:              id,
		Name:            id,
		Kind:            kind,
		Targets:         targets,
		TemporalScope:   model.TemporalScope{DaysOfWeek: days},
		ShiftConstraint: model.ShiftConstraint{ShiftType: shift},
		IsActive:        true,
	}
}

func staff(ids ...string) model.Targets {
	return model.Targets{StaffIDs: ids}
}

func TestDetect_PreferVersusAvoid(t *testing.T) {
	a := rule("A", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1, 3)
	b := rule("B", model.KindAvoidShift, model.ShiftEarly, staff("s1"), 3)

	conflicts := Detect([]model.Rule{a, b}, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, [2]string{"A", "B"}, conflicts[0].RuleIDs)
	assert.Equal(t, []int{3}, conflicts[0].Days)
	assert.Equal(t, model.ShiftEarly, conflicts[0].ShiftType)
	assert.Contains(t, conflicts[0].Description, "Wed")
}

func TestDetect_SymmetricAndDeterministic(t *testing.T) {
	rules := []model.Rule{
		rule("z", model.KindAvoidShiftWithExceptions, model.ShiftLate, staff("s1"), 5),
		rule("m", model.KindRequiredOff, model.ShiftOff, model.Targets{All: true}, 5),
		rule("a", model.KindPreferredShift, model.ShiftLate, staff("s1", "s2"), 5),
	}
	reversed := []model.Rule{rules[2], rules[1], rules[0]}

	first := Detect(rules, nil)
	second := Detect(reversed, nil)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, [2]string{"a", "m"}, first[0].RuleIDs, "required off versus preferred late")
	assert.Equal(t, [2]string{"a", "z"}, first[1].RuleIDs, "preferred late versus avoid late")
}

func TestDetect_NoConflict(t *testing.T) {
	tests := []struct {
		name  string
		rules []model.Rule
	}{
		{"different staff", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
			rule("b", model.KindAvoidShift, model.ShiftEarly, staff("s2"), 1),
		}},
		{"different days", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
			rule("b", model.KindAvoidShift, model.ShiftEarly, staff("s1"), 2),
		}},
		{"different shift", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
			rule("b", model.KindAvoidShift, model.ShiftLate, staff("s1"), 1),
		}},
		{"same direction", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
			rule("b", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
		}},
		{"required off with preferred off", []model.Rule{
			rule("a", model.KindRequiredOff, model.ShiftOff, staff("s1"), 1),
			rule("b", model.KindPreferredShift, model.ShiftOff, staff("s1"), 1),
		}},
		{"inactive rule", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 1),
			func() model.Rule {
				r := rule("b", model.KindAvoidShift, model.ShiftEarly, staff("s1"), 1)
				r.IsActive = false
				return r
			}(),
		}},
		{"empty targets", []model.Rule{
			rule("a", model.KindPreferredShift, model.ShiftEarly, model.Targets{}, 1),
			rule("b", model.KindAvoidShift, model.ShiftEarly, model.Targets{All: true}, 1),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Detect(tt.rules, nil))
		})
	}
}

func TestDetect_StatusResolvedThroughRoster(t *testing.T) {
	roster := []model.StaffMember{{ID: "s1", Status: "part-time"}, {ID: "s2", Status: "full-time"}}
	a := rule("a", model.KindPreferredShift, model.ShiftEarly, model.Targets{StaffStatus: "part-time"}, 2)
	b := rule("b", model.KindAvoidShift, model.ShiftEarly, staff("s1"), 2)
	c := rule("c", model.KindAvoidShift, model.ShiftEarly, staff("s2"), 2)

	conflicts := Detect([]model.Rule{a, b, c}, roster)

	require.Len(t, conflicts, 1)
	assert.Equal(t, [2]string{"a", "b"}, conflicts[0].RuleIDs)
}

func TestDetect_DateWindows(t *testing.T) {
	a := rule("a", model.KindRequiredOff, model.ShiftOff, staff("s1"))
	a.TemporalScope = model.TemporalScope{EffectiveFrom: "2026-04-01", EffectiveUntil: "2026-04-07"}
	b := rule("b", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 2)
	b.TemporalScope.EffectiveFrom = "2026-04-05"
	late := rule("c", model.KindPreferredShift, model.ShiftEarly, staff("s1"), 2)
	late.TemporalScope.EffectiveFrom = "2026-05-01"

	conflicts := Detect([]model.Rule{a, b, late}, nil)

	require.Len(t, conflicts, 1, "a window with no weekdays covers all of them, disjoint windows never conflict")
	assert.Equal(t, [2]string{"a", "b"}, conflicts[0].RuleIDs)
	assert.Equal(t, []int{2}, conflicts[0].Days)
}

func TestDetect_RequiredOffVersusAvoidOff(t *testing.T) {
	a := rule("a", model.KindRequiredOff, model.ShiftOff, staff("s1"), 0)
	b := rule("b", model.KindAvoidShift, model.ShiftOff, staff("s1"), 0)

	conflicts := Detect([]model.Rule{a, b}, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ShiftOff, conflicts[0].ShiftType)
}

func TestDetect_GroupTargetsResolveToMembers(t *testing.T) {
	group := model.Rule{ID: "g1", Kind: model.KindStaffGroup, Targets: staff("s1", "s2"), IsActive: true}
	a := rule("A", model.KindPreferredShift, model.ShiftEarly, staff("g1"), 2)
	b := rule("B", model.KindAvoidShift, model.ShiftEarly, staff("s2"), 2)

	conflicts := Detect([]model.Rule{group, a, b}, nil)
	require.Len(t, conflicts, 1)
	assert.Equal(t, [2]string{"A", "B"}, conflicts[0].RuleIDs)

	group.IsActive = false
	assert.Empty(t, Detect([]model.Rule{group, a, b}, nil), "an inactive group has no members")
}
