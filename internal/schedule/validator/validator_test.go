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

package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

type countingSource struct {
	schedule schedulemodel.Schedule
	err      error
	calls    int
}

func (s *countingSource) LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error) {
	s.calls++
	return s.schedule, s.err
}

// March 2026: the 2nd is a Monday, ISO week 10.
func liveSchedule() schedulemodel.Schedule {
	return schedulemodel.Schedule{
		Staff: []model.StaffMember{
			{ID: "s1", Name: "Aiko", Status: "full_time"},
			{ID: "s2", Name: "Ren", Status: "part_time"},
		},
		Assignments: map[string]map[string]model.ShiftType{
			"s1": {
				"2026-03-02": model.ShiftOff,
				"2026-03-03": model.ShiftOff,
				"2026-03-04": model.ShiftOff,
				"2026-03-05": model.ShiftEarly,
			},
			"s2": {
				"2026-03-02": model.ShiftEarly,
				"2026-03-03": model.ShiftEarly,
				"2026-03-10": model.ShiftOff,
			},
		},
	}
}

func weeklyLimit(max int) model.Rule {
	return model.Rule{
		ID:              "w1",
		Kind:            model.KindWeeklyLimit,
		Targets:         model.Targets{All: true},
		ShiftConstraint: model.ShiftConstraint{ShiftType: model.ShiftOff},
		Limit:           model.Limit{MaxCount: max},
		IsActive:        true,
	}
}

func TestCheckRule_WeeklyLimit(t *testing.T) {
	violations := CheckRule(weeklyLimit(2), liveSchedule())

	require.Len(t, violations, 1)
	assert.Equal(t, "s1", violations[0].StaffID)
	assert.Equal(t, "2026-W10", violations[0].Period)
	assert.Equal(t, 3, violations[0].Actual)
	assert.Equal(t, 2, violations[0].Limit)

	assert.Empty(t, CheckRule(weeklyLimit(3), liveSchedule()))
}

func TestCheckRule_DayFilterAndWindow(t *testing.T) {
	rule := weeklyLimit(1)
	rule.TemporalScope.DaysOfWeek = []int{1, 2}
	assert.Len(t, CheckRule(rule, liveSchedule()), 1, "Monday and Tuesday off exceed one")

	rule.TemporalScope.DaysOfWeek = nil
	rule.TemporalScope.EffectiveFrom = "2026-03-04"
	assert.Empty(t, CheckRule(rule, liveSchedule()), "only one off day falls inside the window")
}

func TestCheckRule_MonthlyLimitByStatus(t *testing.T) {
	rule := model.Rule{
		Kind:            model.KindMonthlyLimit,
		Targets:         model.Targets{StaffStatus: "part_time"},
		ShiftConstraint: model.ShiftConstraint{ShiftType: model.ShiftEarly},
		Limit:           model.Limit{MaxCount: 1},
		IsActive:        true,
	}
	violations := CheckRule(rule, liveSchedule())

	require.Len(t, violations, 1)
	assert.Equal(t, "s2", violations[0].StaffID)
	assert.Equal(t, "2026-03", violations[0].Period)
}

func TestCheckStaffTypeLimit(t *testing.T) {
	violations := CheckStaffTypeLimit("full_time", model.StaffTypeLimit{MaxOff: 2}, liveSchedule())
	require.Len(t, violations, 1)
	assert.Equal(t, model.ShiftOff, violations[0].Shift)

	assert.Empty(t, CheckStaffTypeLimit("part_time", model.StaffTypeLimit{MaxOff: 2, MaxEarly: 2}, liveSchedule()))
}

func TestLimitValidator_CachesSchedulePerTenant(t *testing.T) {
	source := &countingSource{schedule: liveSchedule()}
	v := NewLimitValidator(source, time.Minute)
	validate := v.ForTenant("carbon.super")
	rule := weeklyLimit(2)

	for i := 0; i < 3; i++ {
		violations, err := validate(context.Background(), model.CandidateChange{RuleID: "w1", Rule: &rule})
		require.NoError(t, err)
		assert.Len(t, violations, 1)
	}
	assert.Equal(t, 1, source.calls)

	v.Invalidate("carbon.super")
	_, err := validate(context.Background(), model.CandidateChange{RuleID: "w1", Rule: &rule})
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestLimitValidator_SourceError(t *testing.T) {
	v := NewLimitValidator(&countingSource{err: errors.New("down")}, time.Minute)
	rule := weeklyLimit(2)
	_, err := v.Validate(context.Background(), "t", model.CandidateChange{Rule: &rule})
	assert.Error(t, err)
}
