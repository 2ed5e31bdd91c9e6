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
	"fmt"
	"sort"
	"time"

	schedulemodel "github.com/wso2/shift-settings-reconciler/internal/schedule/model"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/cache"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

// ScheduleSource loads the live schedule of a tenant.
type ScheduleSource interface {
	LoadSchedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error)
}

// LimitValidator checks candidate limits against the live schedule. Schedules are cached per
// tenant for the configured TTL.
type LimitValidator struct {
	source ScheduleSource
	cache  *cache.Cache
}

func NewLimitValidator(source ScheduleSource, ttl time.Duration) *LimitValidator {
	return &LimitValidator{source: source, cache: cache.NewCache(ttl)}
}

// ForTenant binds the validator to a tenant so it can be handed to an engine.
func (v *LimitValidator) ForTenant(tenant string) func(context.Context, model.CandidateChange) ([]model.Violation, error) {
	return func(ctx context.Context, change model.CandidateChange) ([]model.Violation, error) {
		return v.Validate(ctx, tenant, change)
	}
}

// Invalidate drops the cached schedule of the tenant.
func (v *LimitValidator) Invalidate(tenant string) {
	v.cache.Delete(tenant)
}

// Validate returns the periods of the live schedule the candidate would break.
func (v *LimitValidator) Validate(ctx context.Context, tenant string, change model.CandidateChange) ([]model.Violation, error) {
	schedule, err := v.schedule(ctx, tenant)
	if err != nil {
		return nil, err
	}
	var violations []model.Violation
	switch {
	case change.Rule != nil:
		violations = CheckRule(*change.Rule, schedule)
	case change.StaffTypeLimit != nil:
		violations = CheckStaffTypeLimit(change.StaffType, *change.StaffTypeLimit, schedule)
	}
	if len(violations) > 0 {
		log.GetLogger().Debug("Candidate limit violates live schedule",
			log.String("tenant", tenant), log.Int("violations", len(violations)))
	}
	return violations, nil
}

func (v *LimitValidator) schedule(ctx context.Context, tenant string) (schedulemodel.Schedule, error) {
	if cached, ok := v.cache.Get(tenant); ok {
		return cached.(schedulemodel.Schedule), nil
	}
	schedule, err := v.source.LoadSchedule(ctx, tenant)
	if err != nil {
		return schedulemodel.Schedule{}, err
	}
	v.cache.Set(tenant, schedule)
	return schedule, nil
}

// CheckRule counts the constrained shift per ISO week or calendar month for every targeted
// staff member and reports the periods above MaxCount. Non-limit rules never violate.
func CheckRule(rule model.Rule, schedule schedulemodel.Schedule) []model.Violation {
	if !rule.Kind.IsLimit() || !rule.IsActive || rule.Limit.MaxCount <= 0 {
		return nil
	}
	shift := rule.ShiftConstraint.ShiftType
	if shift == "" {
		shift = model.ShiftOff
	}
	days := make(map[int]bool, len(rule.TemporalScope.DaysOfWeek))
	for _, d := range rule.TemporalScope.DaysOfWeek {
		days[d] = true
	}

	var violations []model.Violation
	for _, staffID := range targetedStaff(rule.Targets, schedule) {
		counts := make(map[string]int)
		for _, date := range schedule.Dates(staffID) {
			day, err := time.Parse(utils.DateLayout, date)
			if err != nil || !inWindow(date, rule.TemporalScope) {
				continue
			}
			if len(days) > 0 && !days[int(day.Weekday())] {
				continue
			}
			if assigned, _ := schedule.ShiftOn(staffID, date); assigned == shift {
				counts[periodOf(rule.Kind, day)]++
			}
		}
		for _, period := range sortedPeriods(counts) {
			if counts[period] > rule.Limit.MaxCount {
				violations = append(violations, model.Violation{
					StaffID: staffID,
					Period:  period,
					Shift:   shift,
					Actual:  counts[period],
					Limit:   rule.Limit.MaxCount,
					Message: fmt.Sprintf("%s has %d %s shifts in %s, limit is %d",
						staffID, counts[period], shift, period, rule.Limit.MaxCount),
				})
			}
		}
	}
	return violations
}

// CheckStaffTypeLimit counts off and early shifts per calendar month for every staff member of
// the type.
func CheckStaffTypeLimit(staffType string, limit model.StaffTypeLimit, schedule schedulemodel.Schedule) []model.Violation {
	bounds := []struct {
		shift model.ShiftType
		max   int
	}{
		{model.ShiftOff, limit.MaxOff},
		{model.ShiftEarly, limit.MaxEarly},
	}
	var violations []model.Violation
	for _, staffID := range schedule.StaffIDs(staffType) {
		for _, b := range bounds {
			if b.max <= 0 {
				continue
			}
			counts := make(map[string]int)
			for _, date := range schedule.Dates(staffID) {
				day, err := time.Parse(utils.DateLayout, date)
				if err != nil {
					continue
				}
				if assigned, _ := schedule.ShiftOn(staffID, date); assigned == b.shift {
					counts[day.Format("2006-01")]++
				}
			}
			for _, period := range sortedPeriods(counts) {
				if counts[period] > b.max {
					violations = append(violations, model.Violation{
						StaffID: staffID,
						Period:  period,
						Shift:   b.shift,
						Actual:  counts[period],
						Limit:   b.max,
						Message: fmt.Sprintf("%s (%s) has %d %s shifts in %s, limit is %d",
							staffID, staffType, counts[period], b.shift, period, b.max),
					})
				}
			}
		}
	}
	return violations
}

func targetedStaff(t model.Targets, schedule schedulemodel.Schedule) []string {
	switch {
	case t.All:
		return schedule.StaffIDs("")
	case t.StaffStatus != "":
		return schedule.StaffIDs(t.StaffStatus)
	}
	return t.StaffIDs
}

func periodOf(kind model.RuleKind, day time.Time) string {
	if kind == model.KindWeeklyLimit {
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return day.Format("2006-01")
}

// inWindow compares dates lexically; both sides are in DateLayout.
func inWindow(date string, scope model.TemporalScope) bool {
	if scope.EffectiveFrom != "" && date < scope.EffectiveFrom {
		return false
	}
	if scope.EffectiveUntil != "" && date > scope.EffectiveUntil {
		return false
	}
	return true
}

func sortedPeriods(counts map[string]int) []string {
	periods := make([]string, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return periods
}
