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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

const quiet = 30 * time.Millisecond

type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) fire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, id)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func newScheduler() (*Scheduler, *sync.Mutex, *recorder) {
	loop := &sync.Mutex{}
	rec := &recorder{}
	return New(quiet, loop, rec.fire), loop, rec
}

func TestScheduler_CoalescesBurst(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, loop, rec := newScheduler()

	for i := 0; i < 5; i++ {
		loop.Lock()
		s.Schedule("r1")
		loop.Unlock()
		time.Sleep(quiet / 5)
	}

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * quiet)
	assert.Equal(t, []string{"r1"}, rec.snapshot(), "a burst commits exactly once")
	assert.False(t, s.Pending("r1"))
}

func TestScheduler_IdsAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, loop, rec := newScheduler()

	loop.Lock()
	s.Schedule("a")
	s.Schedule("b")
	assert.Equal(t, []string{"a", "b"}, s.PendingIDs())
	loop.Unlock()

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"a", "b"}, rec.snapshot())
}

func TestScheduler_FlushAndCancelPreventFire(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, loop, rec := newScheduler()

	loop.Lock()
	s.Schedule("flushed")
	s.Schedule("cancelled")
	assert.True(t, s.Flush("flushed"))
	assert.True(t, s.Cancel("cancelled"))
	assert.False(t, s.Flush("flushed"), "nothing left to flush")
	loop.Unlock()

	time.Sleep(3 * quiet)
	assert.Empty(t, rec.snapshot())
}

func TestScheduler_StaleFireIsNoOp(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, loop, rec := newScheduler()

	// Hold the loop past the deadline so the callback queues up behind us, then cancel.
	loop.Lock()
	s.Schedule("r1")
	time.Sleep(2 * quiet)
	s.Cancel("r1")
	loop.Unlock()

	time.Sleep(2 * quiet)
	assert.Empty(t, rec.snapshot())
}

func TestScheduler_CloseStopsEverything(t *testing.T) {
	defer goleak.VerifyNone(t)
	s, loop, rec := newScheduler()

	loop.Lock()
	s.Schedule("a")
	s.Schedule("b")
	s.Close()
	assert.False(t, s.Schedule("c"))
	loop.Unlock()

	time.Sleep(3 * quiet)
	assert.Empty(t, rec.snapshot())
	assert.Empty(t, s.PendingIDs())
}
