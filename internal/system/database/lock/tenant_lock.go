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

package lock

import (
	"context"
	"database/sql"
	"hash/fnv"

	"github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// TenantLock serializes settings writes of a tenant across server instances using
// transaction-scoped PostgreSQL advisory locks. The lock is released when the transaction ends.
type TenantLock struct{}

func NewTenantLock() *TenantLock {
	return &TenantLock{}
}

// Key hashes the name into the bigint space of pg_advisory_xact_lock.
func (l *TenantLock) Key(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// AcquireTx blocks until the advisory lock for name is held by tx.
func (l *TenantLock) AcquireTx(ctx context.Context, tx *sql.Tx, name string) error {

	logger := log.GetLogger()
	lockID := l.Key(name)
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockID); err != nil {
		errorMsg := "Failed to execute pg_advisory_xact_lock"
		logger.Error(errorMsg, log.String("lock", name), log.Error(err))
		return errors.NewServerError(errors.LOCK_ACQUIRE.WithDescription("%s for %s", errorMsg, name), err)
	}
	logger.Debug("Advisory lock acquired", log.String("lock", name))
	return nil
}
