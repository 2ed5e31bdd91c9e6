//go:build integration

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

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wso2/shift-settings-reconciler/internal/system/config"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mapped.Port()
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}, "5432/tcp")

	var portNum int
	_, err := fmt.Sscanf(port, "%d", &portNum)
	require.NoError(t, err)

	st, err := OpenPostgresStore(config.DatabaseConfig{
		Type: "postgres",
		DataSource: config.DataSourceConfig{
			Hostname: host, Port: portNum, Name: "testdb",
			Username: "testuser", Password: "testpass", SSLMode: "disable",
		},
	}, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	assertRoundTrip(t, st)
}

func TestMongoStore_RoundTrip(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	}, "27017/tcp")

	ctx := context.Background()
	st, err := OpenMongoStore(ctx, config.MongoDBConfig{
		URI:      fmt.Sprintf("mongodb://%s:%s", host, port),
		Database: "shifts_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })

	assertRoundTrip(t, st)
}
