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

package context

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
)

func TestEnsureTraceID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(constants.TraceIDHeader, "from-header")
	ctx, id := EnsureTraceID(r)
	assert.Equal(t, "from-header", id)
	assert.Equal(t, "from-header", GetTraceID(ctx))

	r = httptest.NewRequest("GET", "/", nil).WithContext(WithTraceID(context.Background(), "existing"))
	_, id = EnsureTraceID(r)
	assert.Equal(t, "existing", id)

	r = httptest.NewRequest("GET", "/", nil)
	_, id = EnsureTraceID(r)
	assert.NotEmpty(t, id)
}
