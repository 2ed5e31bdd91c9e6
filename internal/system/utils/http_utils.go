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

package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	tracectx "github.com/wso2/shift-settings-reconciler/internal/system/context"
	customerrors "github.com/wso2/shift-settings-reconciler/internal/system/errors"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
)

type errorResponse struct {
	Code        string      `json:"code"`
	Message     string      `json:"message"`
	Description string      `json:"description,omitempty"`
	TraceID     string      `json:"traceId,omitempty"`
	Details     interface{} `json:"details,omitempty"`
}

// HandleError sends an HTTP error response based on the provided error.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := tracectx.GetTraceID(r.Context())
	w.Header().Set("Content-Type", "application/json")

	var clientError *customerrors.ClientError
	if errors.As(err, &clientError) {
		status := clientError.StatusCode
		if status == 0 {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Code:        clientError.Code,
			Message:     clientError.Message,
			Description: clientError.Description,
			TraceID:     traceID,
			Details:     clientError.Details,
		})
		return
	}

	log.GetLogger().Error("Request failed", log.String("trace_id", traceID), log.Error(err))
	msg := customerrors.UNEXPECTED_SERVER_ERROR
	var serverError *customerrors.ServerError
	if errors.As(err, &serverError) {
		msg = serverError.ErrorMessage
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    msg.Code,
		Message: msg.Message,
		TraceID: traceID,
	})
}

// WriteJSON writes the payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Error("Failed to encode response", log.Error(err))
	}
}

// TenantFromContext returns the tenant set by the dispatcher, or the default tenant.
func TenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(constants.TenantContextKey).(string); ok && tenant != "" {
		return tenant
	}
	return constants.DefaultTenant
}

// RewriteToDefaultTenant redirects `/api/v1/...` to `/t/<default>/api/v1/...`.
func RewriteToDefaultTenant(apiBasePath string, mux *http.ServeMux, defaultTenant string) {
	mux.HandleFunc(apiBasePath+"/", func(w http.ResponseWriter, r *http.Request) {
		newPath := "/t/" + defaultTenant + r.URL.Path
		http.Redirect(w, r, newPath, http.StatusTemporaryRedirect)
	})
}

// MountTenantDispatcher routes `/t/{tenant}/api/v1/...` to the handler with the tenant and a
// trace id placed on the request context and the API base path stripped.
func MountTenantDispatcher(mux *http.ServeMux, apiBasePath string, handler http.Handler) {
	mux.HandleFunc("/t/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")

		parts := strings.SplitN(strings.TrimPrefix(path, "/t/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			http.Error(w, "Invalid tenant path format", http.StatusBadRequest)
			return
		}

		tenantID := parts[0]
		remainingPath := "/" + parts[1]
		if !strings.HasPrefix(remainingPath, apiBasePath) {
			http.Error(w, "Path must start with "+apiBasePath, http.StatusNotFound)
			return
		}

		traceID := r.Header.Get(constants.TraceIDHeader)
		if traceID == "" {
			traceID = tracectx.GenerateTraceID()
		}
		w.Header().Set(constants.TraceIDHeader, traceID)

		ctx := context.WithValue(r.Context(), constants.TenantContextKey, tenantID)
		ctx = tracectx.WithTraceID(ctx, traceID)
		r = r.WithContext(ctx)
		r.URL.Path = strings.TrimPrefix(remainingPath, apiBasePath)
		if r.URL.Path == "" {
			r.URL.Path = "/"
		}
		handler.ServeHTTP(w, r)
	})
}
