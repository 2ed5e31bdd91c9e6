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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceToInt(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int
		ok       bool
	}{
		{"int to int", 42, 42, true},
		{"float (integer) to int", 42.0, 42, true},
		{"string int to int", " 42 ", 42, true},
		{"json number", json.Number("7"), 7, true},
		{"string non-int", "hello", 0, false},
		{"float (decimal)", 42.5, 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoerceToString(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
		ok       bool
	}{
		{"string to string", "hello", "hello", true},
		{"int to string", 42, "42", true},
		{"float to string (integer)", 42.0, "42", true},
		{"float to string (decimal)", 42.5, "42.5", true},
		{"bool to string", true, "true", true},
		{"map rejected", map[string]interface{}{}, "", false},
		{"nil rejected", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToString(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoerceToFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		{"float to float", 42.5, 42.5, true},
		{"int to float", 42, 42.0, true},
		{"string to float", "3.25", 3.25, true},
		{"string non-numeric", "abc", 0, false},
		{"bool", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToFloat(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoerceToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected bool
		ok       bool
	}{
		{"bool", true, true, true},
		{"string yes", "Yes", true, true},
		{"string false", "false", false, true},
		{"number zero", 0.0, false, true},
		{"number non-zero", 1, true, true},
		{"unknown string", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToBool(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoerceToStringSlice(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected []string
		ok       bool
	}{
		{"array", []interface{}{"a", "b"}, []string{"a", "b"}, true},
		{"single value wrapped", "a", []string{"a"}, true},
		{"numbers stringified", []interface{}{1.0, 2.0}, []string{"1", "2"}, true},
		{"duplicates and blanks dropped", []interface{}{"a", " ", "a", "b"}, []string{"a", "b"}, true},
		{"nested maps skipped", []interface{}{map[string]interface{}{}, "x"}, []string{"x"}, true},
		{"empty array", []interface{}{}, []string{}, true},
		{"map rejected", map[string]interface{}{"a": 1}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToStringSlice(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoerceToDate(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
		ok       bool
	}{
		{"plain date", "2026-04-01", "2026-04-01", true},
		{"RFC3339", "2026-04-01T09:30:00Z", "2026-04-01", true},
		{"local datetime", "2026-04-01T09:30:00", "2026-04-01", true},
		{"garbage", "next tuesday", "", false},
		{"number", 20260401, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := CoerceToDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLookupPath(t *testing.T) {
	raw := map[string]interface{}{
		"strength": map[string]interface{}{"priorityLevel": 4.0},
		"name":     "x",
		"empty":    nil,
	}

	v, ok := LookupPath(raw, "strength.priorityLevel")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = LookupPath(raw, "name.inner")
	assert.False(t, ok, "traversing through a scalar must fail")

	_, ok = LookupPath(raw, "empty")
	assert.False(t, ok, "nil leaves are absent")

	_, ok = LookupPath(nil, "name")
	assert.False(t, ok)
}
