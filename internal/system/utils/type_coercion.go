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

package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// Coercion helpers used when reading persisted settings records.
//
// Records written by older clients store the same logical field with different JSON
// types: numbers as strings, single values where a list is expected, dates with or
// without a time component. Each helper accepts the loose representation and reports
// whether a usable value could be derived, so that callers can fall through to the
// next candidate field or to a default instead of failing the whole record.
//
// Coercion rules:
// - string → int: parse if integral, reject otherwise
// - float64 → int: accept only when there is no fractional part
// - string → bool: "true"/"false"/"yes"/"no"/"1"/"0"
// - scalar → list: wrapped as a single element list
// - date: RFC3339, RFC3339Nano, "2006-01-02T15:04:05" or "2006-01-02", reduced to "2006-01-02"

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	DateLayout,
}

// CoerceToString converts scalars to their string form. Maps and lists are rejected.
func CoerceToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// CoerceToInt converts a value to int without precision loss.
func CoerceToInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return int(v), true
		}
		log.GetLogger().Debug(fmt.Sprintf("Cannot coerce decimal %v to integer without precision loss", v))
		return 0, false
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.GetLogger().Debug(fmt.Sprintf("Cannot coerce string '%s' to integer", v))
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// CoerceToFloat converts a value to float64.
func CoerceToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CoerceToBool converts a value to bool. Numbers map zero to false.
func CoerceToBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
		return false, false
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	default:
		return false, false
	}
}

// CoerceToSlice returns the value as a list, wrapping a single scalar.
func CoerceToSlice(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []interface{}:
		return v, true
	case []string:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []int:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case map[string]interface{}:
		return nil, false
	default:
		return []interface{}{v}, true
	}
}

// CoerceToStringSlice converts a list (or a single scalar) into a list of trimmed, non-empty,
// de-duplicated strings. Elements that cannot be read as strings are skipped.
func CoerceToStringSlice(value interface{}) ([]string, bool) {
	items, ok := CoerceToSlice(value)
	if !ok {
		return nil, false
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := CoerceToString(item)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, true
}

// CoerceToDate returns the calendar date of the value in "2006-01-02" form.
func CoerceToDate(value interface{}) (string, bool) {
	str, ok := value.(string)
	if !ok {
		return "", false
	}
	str = strings.TrimSpace(str)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// LookupPath resolves a dotted path such as "strength.priorityLevel" against nested maps.
// A nil leaf is reported as absent.
func LookupPath(raw map[string]interface{}, path string) (interface{}, bool) {
	if raw == nil {
		return nil, false
	}
	current := raw
	parts := strings.Split(path, ".")
	for i, part := range parts {
		value, found := current[part]
		if !found || value == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// SortedKeys returns the keys of a map in lexical order.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
