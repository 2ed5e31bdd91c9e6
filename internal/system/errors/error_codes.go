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

package errors

const errorPrefix = "SSR-"

var (
	// Client error codes

	INVALID_REQUEST_BODY = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Invalid request body.",
	}

	RULE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Rule not found.",
	}

	RULE_DELETED = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Rule has been deleted.",
	}

	COMMIT_SUPERSEDED = ErrorMessage{
		Code:        errorPrefix + "10004",
		Message:     "Commit superseded by a newer edit.",
		Description: "The rule was edited or deleted while the commit was being validated.",
	}

	LIMIT_VIOLATION = ErrorMessage{
		Code:        errorPrefix + "10005",
		Message:     "Limit violates the current schedule.",
		Description: "Resubmit with skipValidation=true to apply the limit anyway.",
	}

	INVALID_RULE_KIND = ErrorMessage{
		Code:    errorPrefix + "10006",
		Message: "Invalid rule kind.",
	}

	SESSION_CLOSED = ErrorMessage{
		Code:    errorPrefix + "10007",
		Message: "Settings session is closed.",
	}

	GROUP_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10008",
		Message: "Staff group not found or inactive.",
	}

	INVALID_PAGINATION = ErrorMessage{
		Code:    errorPrefix + "10009",
		Message: "Invalid pagination parameters.",
	}

	UNAUTHORIZED = ErrorMessage{
		Code:    errorPrefix + "10401",
		Message: "Unauthorized.",
	}

	FORBIDDEN = ErrorMessage{
		Code:    errorPrefix + "10403",
		Message: "Insufficient scope for the operation.",
	}

	// Server error codes

	LOAD_SETTINGS = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while loading settings.",
	}

	SAVE_SETTINGS = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while saving settings.",
	}

	LOAD_SCHEDULE = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while loading the schedule snapshot.",
	}

	VALIDATE_LIMIT = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while validating limit against the schedule.",
	}

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while initializing the database client.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while acquiring the tenant settings lock.",
	}

	UNEXPECTED_SERVER_ERROR = ErrorMessage{
		Code:    errorPrefix + "15999",
		Message: "Unexpected server error.",
	}
)
