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

package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/errors"
)

var authCfg = config.AuthConfig{Enabled: true, JWTSecret: "k"}

func request(t *testing.T, scope string) *http.Request {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        "manager-1",
		"org_handle": "acme",
		"scope":      scope,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/settings", nil)
	r = r.WithContext(context.WithValue(r.Context(), constants.TenantContextKey, "acme"))
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestAuthnAndAuthz_SetsSubject(t *testing.T) {
	ctx, err := authnAndAuthz(request(t, constants.OperationViewSettings), constants.OperationViewSettings, authCfg)
	require.NoError(t, err)
	assert.Equal(t, "manager-1", ctx.Value(constants.SubjectContextKey))
}

func TestAuthnAndAuthz_Forbidden(t *testing.T) {
	_, err := authnAndAuthz(request(t, constants.OperationViewSettings), constants.OperationUpdateSettings, authCfg)
	var clientErr *errors.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusForbidden, clientErr.StatusCode)
}

func TestAuthnAndAuthz_MissingHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/settings", nil)
	_, err := authnAndAuthz(r, constants.OperationViewSettings, authCfg)
	var clientErr *errors.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
}

func TestAuthnAndAuthz_Disabled(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/settings", nil)
	_, err := authnAndAuthz(r, constants.OperationViewSettings, config.AuthConfig{})
	assert.NoError(t, err)
}

func TestEnableCORS(t *testing.T) {
	h := EnableCORS([]string{"https://app.example"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/", nil)
	r.Header.Set("Origin", "https://app.example")
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example")
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
