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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func TestPageWalksAllItems(t *testing.T) {
	items := []string{"d", "a", "e", "c", "b"}

	page, p, err := Page(items, identity, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, page)
	require.NotEmpty(t, p.NextCursor)

	page, p, err = Page(items, identity, p.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, page)

	page, p, err = Page(items, identity, p.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, page)
	assert.Empty(t, p.NextCursor)
	assert.Equal(t, 1, p.Count)
}

func TestPageZeroCount(t *testing.T) {
	page, p, err := Page([]string{"a"}, identity, "", 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Empty(t, p.NextCursor)
}

func TestPageRejectsBadCursor(t *testing.T) {
	_, _, err := Page([]string{"a"}, identity, "not base64!", 1)
	assert.Error(t, err)
}

func TestParseCount(t *testing.T) {
	cases := map[string]struct {
		query   string
		want    int
		wantErr bool
	}{
		"default":      {query: "", want: defaultCount},
		"explicit":     {query: "?count=7", want: 7},
		"limit alias":  {query: "?limit=3", want: 3},
		"capped":       {query: "?count=9999", want: maxCount},
		"zero":         {query: "?count=0", want: 0},
		"negative":     {query: "?count=-1", wantErr: true},
		"not a number": {query: "?count=abc", wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseCount(httptest.NewRequest("GET", "/settings/conflicts"+tc.query, nil))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
