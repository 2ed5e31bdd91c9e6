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
	"context"
	"sync/atomic"
	"time"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// CommitFunc receives the outbound settings document after every committed mutation, with the
// revision that numbers it. It is called with the engine lock held and must not call back into
// the engine.
type CommitFunc func(settings model.Settings, revision uint64)

// ValidateFunc checks a candidate limit against the live schedule. It runs without the
// engine lock held.
type ValidateFunc func(ctx context.Context, change model.CandidateChange) ([]model.Violation, error)

// CommitOptions tunes a single Commit call.
type CommitOptions struct {
	// SkipValidation applies a limit even though the validator would reject it.
	SkipValidation bool
}

type Option func(*Engine)

// WithCommitHandler forwards outbound documents to the host. A committed record ignores inbound
// data until its revision is acknowledged, either by an echo carrying the committed value or by
// ApplyInboundAsOf with a saved revision at or above it, so hosts that persist asynchronously
// should report saved revisions back.
func WithCommitHandler(fn CommitFunc) Option {
	return func(e *Engine) { e.onCommit = fn }
}

func WithValidator(fn ValidateFunc) Option {
	return func(e *Engine) { e.onValidate = fn }
}

func WithRoster(roster []model.StaffMember) Option {
	return func(e *Engine) { e.roster = append([]model.StaffMember(nil), roster...) }
}

// WithQuietPeriod sets how long free-text edits wait for further keystrokes before committing.
func WithQuietPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.quiet = d
		}
	}
}

// WithStrengthDefaults replaces the per-kind defaults used for new and legacy rules.
func WithStrengthDefaults(defaults model.KindDefaultsTable) Option {
	return func(e *Engine) { e.defaults = defaults }
}

// WithRevisions numbers outbound documents from a counter shared with other engines, so a
// tenant's revisions keep increasing when its session is reopened.
func WithRevisions(counter *atomic.Uint64) Option {
	return func(e *Engine) { e.revisions = counter }
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func defaultOptions(e *Engine) {
	e.quiet = constants.DefaultQuietPeriod
	e.defaults = model.DefaultKindDefaults()
}
