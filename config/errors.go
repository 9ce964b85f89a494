// Copyright 2025 The ArrowDNS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import "errors"

var (
	ErrNoServers               = errors.New("config: at least one server must be configured")
	ErrQueryTimeoutOutOfRange  = errors.New("config: query_timeout_ms must be in [100, 30000]")
	ErrRetryAttemptsOutOfRange = errors.New("config: retry.max_attempts must be in [1, 10]")
	ErrRetryDelayInverted      = errors.New("config: retry.max_delay_ms must be >= retry.base_delay_ms")
)
