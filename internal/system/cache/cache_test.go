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

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := NewCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestCache_GetBeforeAndAfterExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("tenant-a", 42)

	v, ok := c.Get("tenant-a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok = c.Get("tenant-a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entries are evicted on read")
}

func TestCache_PurgeRemovesOnlyExpired(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("short", "x")
	c.SetWithTTL("long", "y", time.Hour)

	clock.t = clock.t.Add(5 * time.Minute)
	assert.Equal(t, 1, c.Purge())

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("k", "v")
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}
