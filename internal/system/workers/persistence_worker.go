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

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/wso2/shift-settings-reconciler/internal/settings/model"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// SettingsSaver writes a tenant's outbound settings document.
type SettingsSaver interface {
	Save(ctx context.Context, tenant string, settings model.Settings) error
}

// SavedFunc is told the revision of every document written successfully.
type SavedFunc func(tenant string, revision uint64)

type pendingDocument struct {
	settings model.Settings
	revision uint64
}

// PersistenceWorker saves outbound settings documents off the engine goroutine. Pending
// documents are coalesced per tenant: only the newest document of a tenant is written, since
// each one carries the complete state.
type PersistenceWorker struct {
	saver       SettingsSaver
	saveTimeout time.Duration

	mu      sync.Mutex
	pending map[string]pendingDocument
	order   []string
	onSaved SavedFunc

	signal  chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

func NewPersistenceWorker(saver SettingsSaver, saveTimeout time.Duration) *PersistenceWorker {
	if saveTimeout <= 0 {
		saveTimeout = 10 * time.Second
	}
	return &PersistenceWorker{
		saver:       saver,
		saveTimeout: saveTimeout,
		pending:     make(map[string]pendingDocument),
		signal:      make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *PersistenceWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.run()
}

// OnSaved registers the callback run after each successful save.
func (w *PersistenceWorker) OnSaved(fn SavedFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSaved = fn
}

// Enqueue replaces the pending document of the tenant. It never blocks, so it is safe to call
// from an engine commit handler.
func (w *PersistenceWorker) Enqueue(tenant string, settings model.Settings, revision uint64) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		log.GetLogger().Warn("Dropping settings document enqueued after shutdown", log.String("tenant", tenant))
		return
	}
	if _, ok := w.pending[tenant]; !ok {
		w.order = append(w.order, tenant)
	}
	if current, ok := w.pending[tenant]; !ok || revision >= current.revision {
		w.pending[tenant] = pendingDocument{settings: settings, revision: revision}
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Stop writes whatever is still pending and waits for the worker to exit.
func (w *PersistenceWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	if !started {
		w.drain()
		return nil
	}
	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *PersistenceWorker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.signal:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *PersistenceWorker) drain() {
	for {
		tenant, doc, ok := w.next()
		if !ok {
			return
		}
		w.save(tenant, doc)
	}
}

func (w *PersistenceWorker) next() (string, pendingDocument, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		return "", pendingDocument{}, false
	}
	tenant := w.order[0]
	w.order = w.order[1:]
	doc := w.pending[tenant]
	delete(w.pending, tenant)
	return tenant, doc, true
}

func (w *PersistenceWorker) save(tenant string, doc pendingDocument) {
	logger := log.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	if err := w.saver.Save(ctx, tenant, doc.settings); err != nil {
		// The engine does not roll back; the next commit or refresh reconciles.
		logger.Warn("Failed to persist settings", log.String("tenant", tenant), log.Error(err))
		return
	}
	w.mu.Lock()
	onSaved := w.onSaved
	w.mu.Unlock()
	if onSaved != nil {
		onSaved(tenant, doc.revision)
	}
	logger.Audit(log.AuditEvent{
		InitiatorType: log.InitiatorTypeSystem,
		Tenant:        tenant,
		TargetID:      tenant,
		TargetType:    log.TargetTypeSettings,
		ActionID:      log.ActionPersistSettings,
	})
}
