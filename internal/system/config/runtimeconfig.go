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

package config

import "sync"

// ServiceRuntime holds the runtime configuration of the settings server.
type ServiceRuntime struct {
	ServiceHome string `yaml:"service_home"`
	Config      Config `yaml:"config"`
}

var (
	runtimeConfig *ServiceRuntime
	mu            sync.RWMutex
	once          sync.Once
)

// InitializeRuntime initializes the runtime configuration once per process.
func InitializeRuntime(serviceHome string, config *Config) error {

	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		runtimeConfig = &ServiceRuntime{
			ServiceHome: serviceHome,
			Config:      *config,
		}
	})

	return nil
}

// GetRuntime returns the runtime configuration.
func GetRuntime() *ServiceRuntime {

	mu.RLock()
	defer mu.RUnlock()
	if runtimeConfig == nil {
		panic("service runtime is not initialized")
	}
	return runtimeConfig
}

// OverrideRuntime replaces the runtime configuration. Used by tests.
func OverrideRuntime(conf Config) {
	mu.Lock()
	defer mu.Unlock()
	runtimeConfig = &ServiceRuntime{
		Config: conf,
	}
}
