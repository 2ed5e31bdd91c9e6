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
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/system/authn"
	"github.com/wso2/shift-settings-reconciler/internal/system/authz"
	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	tracectx "github.com/wso2/shift-settings-reconciler/internal/system/context"
	"github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
	"github.com/wso2/shift-settings-reconciler/internal/system/utils"
)

// AuthnAndAuthz authenticates the bearer token of the request for its tenant and checks the
// scopes of the operation. On success the returned context carries the token subject.
func AuthnAndAuthz(r *http.Request, operation string) (context.Context, error) {
	return authnAndAuthz(r, operation, config.GetRuntime().Config.Auth)
}

func authnAndAuthz(r *http.Request, operation string, cfg config.AuthConfig) (context.Context, error) {

	ctx := r.Context()
	if !cfg.Enabled {
		return ctx, nil
	}
	tenant := utils.TenantFromContext(ctx)
	logger := log.GetLogger()

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ctx, errors.NewClientErrorWithTraceID(
			errors.UNAUTHORIZED.WithDescription("Missing or invalid Authorization header"),
			http.StatusUnauthorized, tracectx.GetTraceID(ctx))
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := authn.ValidateToken(token, tenant, cfg)
	if err != nil {
		logger.Audit(log.AuditEvent{
			InitiatorType: log.InitiatorTypeUser,
			Tenant:        tenant,
			ActionID:      log.ActionAuthenticationFailure,
			TraceID:       tracectx.GetTraceID(ctx),
		})
		return ctx, err
	}

	scope, _ := claims[constants.ScopeClaim].(string)
	if !authz.HasRequiredScopes(scope, operation, cfg.RequiredScopes) {
		return ctx, errors.NewClientErrorWithTraceID(
			errors.FORBIDDEN.WithDescription("Do not have permission to perform %s", operation),
			http.StatusForbidden, tracectx.GetTraceID(ctx))
	}

	subject, _ := claims.GetSubject()
	logger.Audit(log.AuditEvent{
		InitiatorID:   subject,
		InitiatorType: log.InitiatorTypeUser,
		Tenant:        tenant,
		ActionID:      log.ActionAuthenticationSuccess,
		TraceID:       tracectx.GetTraceID(ctx),
		Data:          map[string]string{"operation": operation},
	})
	return context.WithValue(ctx, constants.SubjectContextKey, subject), nil
}

// Guard wraps a handler with AuthnAndAuthz for the operation.
func Guard(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, err := AuthnAndAuthz(r, operation)
		if err != nil {
			utils.HandleError(w, r, err)
			return
		}
		next(w, r.WithContext(ctx))
	}
}

// EnableCORS answers preflight requests and adds CORS headers for the configured origins.
func EnableCORS(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(origin, allowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+constants.TraceIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", constants.TraceIDHeader)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
