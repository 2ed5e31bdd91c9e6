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
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

// legacyIDNamespace seeds the ids derived for records that were persisted without one.
var legacyIDNamespace = uuid.MustParse("8f0d3a52-58c4-4d7e-9a43-6a1b2f0c9e11")

// collectionAliases are older document keys for a collection, tried after the canonical key.
var collectionAliases = map[model.Collection][]string{
	model.CollectionStaffGroups:   {"groups"},
	model.CollectionConflictRules: {"conflicts"},
}

// Normalizer maps settings records of any historical shape onto the canonical model.
// It never fails: malformed fields fall through to the next candidate and finally to
// the per-kind default.
type Normalizer struct {
	defaults model.KindDefaultsTable
}

// New creates a normalizer. A nil table selects the built-in defaults.
func New(defaults model.KindDefaultsTable) *Normalizer {
	if defaults == nil {
		defaults = model.DefaultKindDefaults()
	}
	return &Normalizer{defaults: defaults}
}

// Defaults returns the defaults applied to a rule of the kind.
func (n *Normalizer) Defaults(kind model.RuleKind) model.KindDefaults {
	return n.defaults.For(kind)
}

// Normalize returns the canonical rule for a raw record.
func (n *Normalizer) Normalize(raw map[string]interface{}, defaultKind model.RuleKind) model.Rule {
	return n.normalize(raw, defaultKind, "")
}

func (n *Normalizer) normalize(raw map[string]interface{}, defaultKind model.RuleKind, within model.Collection) model.Rule {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	logMalformedContainers(raw)
	r := newRecord(raw)

	kind := defaultKind
	if k, ok := resolve(r, coerceKind, kindKeys...); ok {
		kind = k
	}
	if within != "" && !within.Accepts(kind) {
		kind = within.DefaultKind()
	}
	if !kind.Valid() {
		kind = model.KindPreferredShift
	}
	d := n.defaults.For(kind)

	rule := model.Rule{
		Kind:     kind,
		IsActive: true,
		GroupIDs: []string{},
	}

	if id, ok := resolve(r, nonEmptyString, idKeys...); ok {
		rule.ID = id
	} else {
		rule.ID = derivedID(string(kind), raw)
	}
	rule.Name, _ = resolve(r, nonEmptyString, nameKeys...)
	rule.Description, _ = resolve(r, nonEmptyString, descriptionKeys...)
	rule.Targets = resolveTargets(r, d)

	rule.TemporalScope.DaysOfWeek = []int{}
	if days, ok := resolve(r, coerceDays, dayKeys...); ok {
		rule.TemporalScope.DaysOfWeek = days
	}
	rule.TemporalScope.EffectiveFrom, _ = resolve(r, utils.CoerceToDate, fromKeys...)
	rule.TemporalScope.EffectiveUntil, _ = resolve(r, utils.CoerceToDate, untilKeys...)

	rule.ShiftConstraint.ShiftType = d.ShiftType
	if shift, ok := resolve(r, coerceShift, shiftKeys...); ok {
		rule.ShiftConstraint.ShiftType = shift
	}
	rule.ShiftConstraint.Exceptions = []model.ShiftType{}
	if exceptions, ok := resolve(r, coerceShiftList, exceptionKeys...); ok {
		rule.ShiftConstraint.Exceptions = exceptions
	}

	rule.Strength = d.Strength
	if p, ok := resolve(r, coercePriority, priorityKeys...); ok {
		rule.Strength.PriorityLevel = p
	}
	rule.Strength.PriorityLevel = clampPriority(rule.Strength.PriorityLevel)
	if hard, ok := resolve(r, utils.CoerceToBool, hardKeys...); ok {
		rule.Strength.IsHardConstraint = hard
	}
	if w, ok := resolve(r, nonNegativeFloat, penaltyKeys...); ok {
		rule.Strength.PenaltyWeight = w
	}

	rule.Limit = d.Limit
	if maxCount, ok := resolve(r, nonNegativeInt, maxKeys...); ok {
		rule.Limit.MaxCount = maxCount
	}
	if minCount, ok := resolve(r, nonNegativeInt, minKeys...); ok {
		rule.Limit.MinCount = minCount
	}

	if groups, ok := resolve(r, utils.CoerceToStringSlice, groupKeys...); ok {
		rule.GroupIDs = groups
	}

	if active, ok := resolve(r, utils.CoerceToBool, activeKeys...); ok {
		rule.IsActive = active
	}
	if deleted, ok := resolve(r, utils.CoerceToBool, deletedKeys...); ok && deleted {
		rule.IsActive = false
	}
	rule.IsLocalOnly, _ = resolve(r, utils.CoerceToBool, localKeys...)

	return rule
}

// resolveTargets reads the canonical targets object, a bare list of ids, or the flat legacy
// fields, scope by scope. Absent targets take the kind default.
func resolveTargets(r record, d model.KindDefaults) model.Targets {
	for _, scope := range r.scopes {
		if t, ok := targetsIn(scope); ok {
			return t
		}
	}
	return model.Targets{All: d.TargetAll, StaffIDs: []string{}}
}

func targetsIn(scope map[string]interface{}) (model.Targets, bool) {
	if value, found := scope["targets"]; found && value != nil {
		if obj, ok := value.(map[string]interface{}); ok {
			t := model.Targets{StaffIDs: []string{}}
			t.All, _ = lookup(obj, utils.CoerceToBool, "all")
			t.StaffStatus, _ = lookup(obj, nonEmptyString, "staffStatus", "status")
			if ids, ok := lookup(obj, utils.CoerceToStringSlice, "staffIds", "ids"); ok {
				t.StaffIDs = ids
			}
			return canonicalTargets(t), true
		}
		if ids, ok := utils.CoerceToStringSlice(value); ok {
			return canonicalTargets(model.Targets{StaffIDs: ids}), true
		}
	}

	t := model.Targets{StaffIDs: []string{}}
	found := false
	if all, ok := lookup(scope, utils.CoerceToBool, targetAllKeys...); ok {
		t.All = all
		found = true
	}
	if ids, ok := lookup(scope, utils.CoerceToStringSlice, targetIDKeys...); ok {
		t.StaffIDs = ids
		found = true
	}
	if status, ok := lookup(scope, nonEmptyString, targetStatusKeys...); ok {
		t.StaffStatus = status
		found = true
	}
	return canonicalTargets(t), found
}

// canonicalTargets folds the "all" markers used by older clients into the All flag.
func canonicalTargets(t model.Targets) model.Targets {
	ids := make([]string, 0, len(t.StaffIDs))
	for _, id := range t.StaffIDs {
		if id == "all" || id == "*" {
			t.All = true
			continue
		}
		ids = append(ids, id)
	}
	if t.StaffStatus == "all" {
		t.All = true
	}
	if t.All {
		return model.Targets{All: true, StaffIDs: []string{}}
	}
	t.StaffIDs = ids
	return t
}

// NormalizeBackupAssignment returns the canonical backup assignment of a raw record.
func (n *Normalizer) NormalizeBackupAssignment(raw map[string]interface{}) model.BackupAssignment {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	r := newRecord(raw)
	a := model.BackupAssignment{AssignmentType: "regular", PriorityOrder: 1}
	if id, ok := resolve(r, nonEmptyString, idKeys...); ok {
		a.ID = id
	} else {
		a.ID = derivedID("backup", raw)
	}
	a.StaffID, _ = resolve(r, nonEmptyString, "staffId", "staff_id", "staffMemberId", "backupStaffId")
	a.GroupID, _ = resolve(r, nonEmptyString, "groupId", "group_id", "targetGroupId", "backupGroupId")
	if t, ok := resolve(r, nonEmptyString, "assignmentType", "type"); ok {
		a.AssignmentType = t
	}
	if p, ok := resolve(r, nonNegativeInt, "priorityOrder", "priority", "order"); ok {
		a.PriorityOrder = p
	}
	a.Notes, _ = resolve(r, nonEmptyString, "notes", "note", "description")
	return a
}

// NormalizeStaffTypeLimit returns the canonical limit of a raw staff-type limit record.
func (n *Normalizer) NormalizeStaffTypeLimit(raw map[string]interface{}) model.StaffTypeLimit {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	r := newRecord(raw)
	l := model.DefaultStaffTypeLimit
	if v, ok := resolve(r, nonNegativeInt, "maxOff", "maxOffDays", "maxOffs", "offLimit"); ok {
		l.MaxOff = v
	}
	if v, ok := resolve(r, nonNegativeInt, "maxEarly", "maxEarlyShifts", "earlyLimit"); ok {
		l.MaxEarly = v
	}
	if v, ok := resolve(r, utils.CoerceToBool, "isHard", "isHardConstraint", "hard"); ok {
		l.IsHard = v
	}
	if v, ok := resolve(r, nonNegativeFloat, "penaltyWeight", "penalty", "weight"); ok {
		l.PenaltyWeight = v
	}
	return l
}

// CanonicalStaffTypeLimit clamps a limit supplied by a caller into the canonical range.
func CanonicalStaffTypeLimit(l model.StaffTypeLimit) model.StaffTypeLimit {
	if l.MaxOff < 0 {
		l.MaxOff = 0
	}
	if l.MaxEarly < 0 {
		l.MaxEarly = 0
	}
	if l.PenaltyWeight < 0 {
		l.PenaltyWeight = 0
	}
	return l
}

// NormalizeSettings normalizes a whole settings document. Each collection may be an array of
// records or an object keyed by id; non-object entries are dropped and duplicate ids keep the
// position of the first occurrence with the content of the last.
func (n *Normalizer) NormalizeSettings(raw map[string]interface{}) model.Settings {
	out := model.NewSettings()
	if raw == nil {
		return out
	}

	for _, c := range model.RuleCollections {
		records := recordsOf(collectionValue(raw, c))
		rules := make([]model.Rule, 0, len(records))
		seen := make(map[string]int, len(records))
		for _, rec := range records {
			rule := n.normalize(rec, c.DefaultKind(), c)
			if idx, dup := seen[rule.ID]; dup {
				rules[idx] = rule
				continue
			}
			seen[rule.ID] = len(rules)
			rules = append(rules, rule)
		}
		out.SetRules(c, rules)
	}

	if limits, ok := raw[constants.StaffTypeLimitsKey].(map[string]interface{}); ok {
		for _, staffType := range utils.SortedKeys(limits) {
			rec, ok := limits[staffType].(map[string]interface{})
			if !ok {
				log.GetLogger().Debug("Dropping non-object staff type limit", log.String("staff_type", staffType))
				continue
			}
			out.StaffTypeLimits[staffType] = n.NormalizeStaffTypeLimit(rec)
		}
	}

	seen := map[string]int{}
	for _, rec := range recordsOf(raw[constants.BackupAssignmentsKey]) {
		a := n.NormalizeBackupAssignment(rec)
		if idx, dup := seen[a.ID]; dup {
			out.BackupAssignments[idx] = a
			continue
		}
		seen[a.ID] = len(out.BackupAssignments)
		out.BackupAssignments = append(out.BackupAssignments, a)
	}
	return out
}

// Canonicalize runs a rule that may have been edited in memory through the normalizer again so
// that it leaves in canonical shape.
func (n *Normalizer) Canonicalize(rule model.Rule) model.Rule {
	return n.Normalize(ToRaw(rule), rule.Kind)
}

// ToRaw renders a rule as a raw record in canonical field layout.
func ToRaw(rule model.Rule) map[string]interface{} {
	return toRaw(rule)
}

// SettingsToRaw renders a settings document as a raw document.
func SettingsToRaw(settings model.Settings) map[string]interface{} {
	return toRaw(settings)
}

func toRaw(v interface{}) map[string]interface{} {
	raw := map[string]interface{}{}
	b, err := json.Marshal(v)
	if err != nil {
		log.GetLogger().Error("Failed to render canonical record", log.Error(err))
		return raw
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		log.GetLogger().Error("Failed to render canonical record", log.Error(err))
	}
	return raw
}

func collectionValue(raw map[string]interface{}, c model.Collection) interface{} {
	if v, ok := raw[string(c)]; ok && v != nil {
		return v
	}
	for _, alias := range collectionAliases[c] {
		if v, ok := raw[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

// recordsOf accepts an array of objects or an object of objects keyed by id.
func recordsOf(value interface{}) []map[string]interface{} {
	switch v := value.(type) {
	case []map[string]interface{}:
		return v
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for i, item := range v {
			rec, ok := item.(map[string]interface{})
			if !ok {
				log.GetLogger().Debug("Dropping non-object settings record", log.Int("index", i))
				continue
			}
			out = append(out, rec)
		}
		return out
	case map[string]interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for _, key := range utils.SortedKeys(v) {
			rec, ok := v[key].(map[string]interface{})
			if !ok {
				log.GetLogger().Debug("Dropping non-object settings record", log.String("key", key))
				continue
			}
			if _, hasID := rec["id"]; !hasID {
				withID := make(map[string]interface{}, len(rec)+1)
				for k, val := range rec {
					withID[k] = val
				}
				withID["id"] = key
				rec = withID
			}
			out = append(out, rec)
		}
		return out
	default:
		return nil
	}
}

// derivedID gives records without an id a stable one so that repeated loads agree.
func derivedID(prefix string, raw map[string]interface{}) string {
	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", raw))
	}
	return uuid.NewSHA1(legacyIDNamespace, append([]byte(prefix+":"), payload...)).String()
}

func logMalformedContainers(raw map[string]interface{}) {
	for _, name := range constants.LegacyContainers {
		value, found := raw[name]
		if !found || value == nil {
			continue
		}
		if _, ok := value.(map[string]interface{}); !ok {
			log.GetLogger().Debug("Ignoring non-object legacy container", log.String("container", name))
		}
	}
}
