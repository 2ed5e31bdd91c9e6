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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestRulePatch_MergeLastWinsPerField(t *testing.T) {
	first := RulePatch{Name: strPtr("a"), PriorityLevel: intPtr(2)}
	second := RulePatch{Name: strPtr("b"), Description: strPtr("d")}

	merged := first.Merge(second)

	assert.Equal(t, "b", *merged.Name)
	assert.Equal(t, "d", *merged.Description)
	assert.Equal(t, 2, *merged.PriorityLevel, "fields absent from the newer patch are kept")
}

func TestRulePatch_ApplyDoesNotAlias(t *testing.T) {
	days := []int{1, 2}
	rule := Rule{ID: "r1", Targets: Targets{StaffIDs: []string{"s1"}}}
	patch := RulePatch{DaysOfWeek: &days}

	out := patch.Apply(rule)
	days[0] = 6

	assert.Equal(t, []int{1, 2}, out.TemporalScope.DaysOfWeek)
	out.Targets.StaffIDs[0] = "changed"
	assert.Equal(t, "s1", rule.Targets.StaffIDs[0])
}

func TestRulePatch_IsTextOnly(t *testing.T) {
	assert.True(t, RulePatch{Name: strPtr("x")}.IsTextOnly())
	assert.True(t, RulePatch{Name: strPtr("x"), Description: strPtr("y")}.IsTextOnly())
	assert.False(t, RulePatch{Name: strPtr("x"), PriorityLevel: intPtr(1)}.IsTextOnly())
	assert.False(t, RulePatch{}.IsTextOnly())
	assert.True(t, RulePatch{}.IsEmpty())
}

func TestCollectionFor(t *testing.T) {
	for _, kind := range AllKinds {
		c := CollectionFor(kind)
		require.True(t, c.Valid(), kind)
		assert.True(t, c.Accepts(kind))
	}
	assert.Equal(t, CollectionConflictRules, CollectionFor(KindIntraGroupConflict))
	assert.Equal(t, KindWeeklyLimit, CollectionWeeklyLimits.DefaultKind())
}

func TestSettings_FindAndClone(t *testing.T) {
	s := NewSettings()
	s.StaffGroups = []Rule{{ID: "g1", Kind: KindStaffGroup, Targets: Targets{StaffIDs: []string{"a"}}}}
	s.StaffTypeLimits["part-time"] = StaffTypeLimit{MaxOff: 2}

	r, c, idx, ok := s.Find("g1")
	require.True(t, ok)
	assert.Equal(t, CollectionStaffGroups, c)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "g1", r.ID)

	clone := s.Clone()
	clone.StaffGroups[0].Targets.StaffIDs[0] = "b"
	clone.StaffTypeLimits["part-time"] = StaffTypeLimit{MaxOff: 9}
	assert.Equal(t, "a", s.StaffGroups[0].Targets.StaffIDs[0])
	assert.Equal(t, 2, s.StaffTypeLimits["part-time"].MaxOff)

	_, _, _, ok = s.Find("missing")
	assert.False(t, ok)
}

func TestKindDefaultsTable_For(t *testing.T) {
	table := KindDefaultsTable{KindPreferredShift: {Strength: Strength{PriorityLevel: 1}}}
	assert.Equal(t, 1, table.For(KindPreferredShift).Strength.PriorityLevel)
	assert.Equal(t, 5, table.For(KindRequiredOff).Strength.PriorityLevel, "missing kinds fall back to built-ins")
	assert.True(t, DefaultKindDefaults().For(KindRequiredOff).Strength.IsHardConstraint)
}
