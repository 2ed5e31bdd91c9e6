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

package authn

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	errors2 "github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

// ValidateAuthenticationAndReturnClaims verifies a bearer token against the runtime auth
// configuration and returns its claims.
func ValidateAuthenticationAndReturnClaims(token, orgHandle string) (jwt.MapClaims, error) {
	return ValidateToken(token, orgHandle, config.GetRuntime().Config.Auth)
}

// ValidateToken verifies an HS256 token: signature, expiry, optional issuer and audience, and
// that its org_handle claim names the tenant of the request.
func ValidateToken(token, orgHandle string, cfg config.AuthConfig) (jwt.MapClaims, error) {

	logger := log.GetLogger()
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		logger.Debug("Rejected bearer token.", log.Error(err))
		return nil, unauthorizedError("Invalid or expired token.")
	}

	if handle, ok := claims[constants.TenantClaim].(string); !ok || handle != orgHandle {
		logger.Debug("Token does not have the expected org_handle claim.", log.String("tenant", orgHandle))
		return nil, unauthorizedError("Token is not valid for this organization.")
	}
	return claims, nil
}

func unauthorizedError(description string) error {
	return errors2.NewClientError(errors2.UNAUTHORIZED.WithDescription("%s", description), http.StatusUnauthorized)
}
