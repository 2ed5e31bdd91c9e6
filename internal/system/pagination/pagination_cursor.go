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

package pagination

import (
	"encoding/base64"
	"fmt"
	"sort"
)

// EncodeCursor turns the sort key of the last item of a page into an opaque cursor.
func EncodeCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func DecodeCursor(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) == 0 {
		return "", fmt.Errorf("invalid cursor encoding")
	}
	return string(b), nil
}

// Page returns up to count items whose key sorts after the cursor. Items are ordered by
// key, so keys must be unique.
func Page[T any](items []T, key func(T) string, cursor string, count int) ([]T, Pagination, error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, Pagination{}, err
	}

	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	start := 0
	if after != "" {
		start = sort.Search(len(sorted), func(i int) bool { return key(sorted[i]) > after })
	}
	end := start + count
	if end > len(sorted) {
		end = len(sorted)
	}

	page := sorted[start:end]
	p := Pagination{Count: len(page), PageSize: count}
	if end < len(sorted) && len(page) > 0 {
		p.NextCursor = EncodeCursor(key(page[len(page)-1]))
	}
	return page, p, nil
}
