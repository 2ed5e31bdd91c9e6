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

package scheduler

import (
	"sort"
	"sync"
	"time"
)

// FireFunc commits the buffered edits of an id. It runs with the loop lock held.
type FireFunc func(id string)

// Scheduler keeps one quiet-period timer per rule id. Rescheduling an id restarts its
// timer, so a burst of edits produces a single commit once the id has been quiet.
//
// Schedule, Flush, Cancel and Close must be called with the loop lock held. Timer
// callbacks acquire the loop lock themselves and fire only if their handle is still the
// current one for the id, so a timer that lost the race with Flush, Cancel, Schedule or
// Close does nothing.
type Scheduler struct {
	quiet  time.Duration
	loop   sync.Locker
	onFire FireFunc

	mu     sync.Mutex
	timers map[string]*handle
	closed bool
}

type handle struct {
	timer *time.Timer
}

// New creates a scheduler whose callbacks serialize on loop.
func New(quiet time.Duration, loop sync.Locker, onFire FireFunc) *Scheduler {
	return &Scheduler{
		quiet:  quiet,
		loop:   loop,
		onFire: onFire,
		timers: make(map[string]*handle),
	}
}

// Schedule starts or restarts the timer of the id. It reports false once the scheduler is closed.
func (s *Scheduler) Schedule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if existing, ok := s.timers[id]; ok {
		existing.timer.Stop()
	}
	h := &handle{}
	h.timer = time.AfterFunc(s.quiet, func() { s.fire(id, h) })
	s.timers[id] = h
	return true
}

// Flush stops the timer of the id and reports whether one was pending. The caller is
// expected to commit synchronously.
func (s *Scheduler) Flush(id string) bool {
	return s.stop(id)
}

// Cancel stops the timer of the id without committing.
func (s *Scheduler) Cancel(id string) bool {
	return s.stop(id)
}

func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// PendingIDs returns the ids with a running timer in lexical order.
func (s *Scheduler) PendingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops every timer. Later calls to Schedule are refused.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, h := range s.timers {
		h.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) stop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.timers[id]
	if !ok {
		return false
	}
	h.timer.Stop()
	delete(s.timers, id)
	return true
}

func (s *Scheduler) fire(id string, h *handle) {
	s.loop.Lock()
	defer s.loop.Unlock()

	s.mu.Lock()
	if s.closed || s.timers[id] != h {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	s.onFire(id)
}
