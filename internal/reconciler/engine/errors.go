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

package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
)

var (
	ErrNotFound    = errors.New("rule not found")
	ErrClosed      = errors.New("engine is closed")
	ErrSuperseded  = errors.New("commit superseded by a newer edit")
	ErrTombstoned  = errors.New("rule has been deleted")
	ErrInvalidKind = errors.New("rule kind does not belong to the collection")
	ErrNoGroup     = errors.New("staff group not found or inactive")
)

// ValidationError is returned when the host validator rejects a candidate limit.
// The canonical value is left as it was.
type ValidationError struct {
	RuleID     string
	StaffType  string
	Violations []model.Violation
}

func (e *ValidationError) Error() string {
	target := e.RuleID
	if target == "" {
		target = "staff type " + e.StaffType
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("limit for %s violates the schedule: %s", target, strings.Join(msgs, "; "))
}
