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

package schedulers

import (
	"context"
	"sync"
	"time"

	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// Refresher re-applies the stored settings of every open session.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// RefreshScheduler periodically echoes the stored settings back into open sessions, so edits
// made elsewhere reach each editor the way a backend push would.
type RefreshScheduler struct {
	refresher Refresher
	interval  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// StartRefreshScheduler starts the periodic refresh job.
func StartRefreshScheduler(refresher Refresher, interval time.Duration) *RefreshScheduler {
	s := &RefreshScheduler{
		refresher: refresher,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	log.GetLogger().Info("Settings refresh scheduler started", log.Duration("interval", interval))
	return s
}

func (s *RefreshScheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			s.refresher.RefreshAll(ctx)
			cancel()
		case <-s.stop:
			return
		}
	}
}

// Stop ends the job and waits for a refresh in progress to finish.
func (s *RefreshScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
