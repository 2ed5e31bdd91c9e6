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

package tombstone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

func settingsWithGroups() model.Settings {
	s := model.NewSettings()
	s.StaffGroups = []model.Rule{
		{ID: "g1", Kind: model.KindStaffGroup, IsActive: true, Targets: model.Targets{StaffIDs: []string{"s1"}}},
		{ID: "g2", Kind: model.KindStaffGroup, IsActive: true, Targets: model.Targets{StaffIDs: []string{"s2"}}},
		{ID: "g3", Kind: model.KindStaffGroup, IsActive: true, Targets: model.Targets{StaffIDs: []string{"s3"}}},
	}
	s.ConflictRules = []model.Rule{
		{ID: "intra-g1", Kind: model.KindIntraGroupConflict, GroupIDs: []string{"g1"}, IsActive: true},
		{ID: "g1-g2", Kind: model.KindGroupConflict, GroupIDs: []string{"g1", "g2"}, IsActive: true},
		{ID: "g1-g2-g3", Kind: model.KindGroupConflict, GroupIDs: []string{"g1", "g2", "g3"}, IsActive: true},
		{ID: "g2-g3", Kind: model.KindGroupConflict, GroupIDs: []string{"g2", "g3"}, IsActive: true},
	}
	s.BackupAssignments = []model.BackupAssignment{
		{ID: "b1", StaffID: "s9", GroupID: "g1"},
		{ID: "b2", StaffID: "s9", GroupID: "g2"},
	}
	return s
}

func TestPruneDependents(t *testing.T) {
	s, pruned := PruneDependents(settingsWithGroups(), "g1")

	assert.ElementsMatch(t, []string{"intra-g1", "g1-g2"}, pruned.RuleIDs)
	assert.Equal(t, []string{"b1"}, pruned.AssignmentIDs)

	require.Len(t, s.ConflictRules, 2)
	assert.Equal(t, "g1-g2-g3", s.ConflictRules[0].ID)
	assert.Equal(t, []string{"g2", "g3"}, s.ConflictRules[0].GroupIDs, "still valid with two groups")
	assert.Equal(t, "g2-g3", s.ConflictRules[1].ID)
	require.Len(t, s.BackupAssignments, 1)
	assert.Equal(t, "b2", s.BackupAssignments[0].ID)
}

func TestReconciler_AbsorbKeepsTombstonesInactive(t *testing.T) {
	r := New()
	r.MarkDeleted("p1")

	inbound := []model.Rule{{ID: "p1", IsActive: true}, {ID: "p2", IsActive: true}}
	absorbed := r.Absorb(inbound)

	assert.False(t, absorbed[0].IsActive, "a stale echo cannot resurrect a deleted rule")
	assert.True(t, absorbed[1].IsActive)
	assert.True(t, inbound[0].IsActive, "input is not modified")
	assert.Equal(t, []string{"p2"}, idsOf(ListActive(absorbed)))
	assert.Equal(t, []string{"p1"}, r.IDs())
}

func TestReconciler_AbsorbSettingsFiltersOrphans(t *testing.T) {
	r := New()
	r.MarkDeleted("g1")

	s := r.AbsorbSettings(settingsWithGroups())

	assert.False(t, s.StaffGroups[0].IsActive)
	assert.Equal(t, []string{"g1-g2-g3", "g2-g3"}, idsOf(s.ConflictRules))
	assert.Equal(t, []string{"b2"}, []string{s.BackupAssignments[0].ID})
}

func TestReconciler_FilterOrphansOfInactiveGroups(t *testing.T) {
	s := settingsWithGroups()
	s.StaffGroups[2].IsActive = false

	out, pruned := New().FilterOrphans(s)

	assert.Equal(t, []string{"g2-g3"}, pruned.RuleIDs)
	assert.Equal(t, []string{"intra-g1", "g1-g2", "g1-g2-g3"}, idsOf(out.ConflictRules))
	assert.Equal(t, []string{"g1", "g2"}, out.ConflictRules[2].GroupIDs)
	assert.False(t, pruned.Empty())
}

func TestReconciler_RemovedAssignmentsStayRemoved(t *testing.T) {
	r := New()
	r.MarkAssignmentRemoved("b2")

	s := r.AbsorbSettings(settingsWithGroups())
	require.Len(t, s.BackupAssignments, 1)
	assert.Equal(t, "b1", s.BackupAssignments[0].ID)

	_, pruned := r.FilterOrphans(settingsWithGroups())
	assert.Equal(t, []string{"b2"}, pruned.AssignmentIDs)
	assert.True(t, r.IsAssignmentRemoved("b2"))
	assert.False(t, r.IsAssignmentRemoved("b1"))
	assert.Empty(t, r.IDs(), "assignment tombstones are kept apart from rule tombstones")
}

func idsOf(rules []model.Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}
