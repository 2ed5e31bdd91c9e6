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

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRequiredScopes(t *testing.T) {
	required := map[string][]string{"settings:delete": {"settings:update", "settings:admin"}}

	assert.True(t, HasRequiredScopes("settings:view settings:update", "settings:view", required))
	assert.False(t, HasRequiredScopes("settings:view", "settings:update", required))
	assert.False(t, HasRequiredScopes("", "settings:view", required))
	assert.False(t, HasRequiredScopes("settings:update", "settings:delete", required))
	assert.True(t, HasRequiredScopes("settings:admin  settings:update", "settings:delete", required))
}
