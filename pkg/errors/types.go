/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package errors

import "net/http"

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainCommand   Domain = "CMD"
	DomainHealth    Domain = "HEALTH"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainShares    Domain = "SHARES"
	DomainSettings  Domain = "SETTINGS"
	DomainMisc      Domain = "MISC"
	DomainSystem    Domain = "SYSTEM"
	DomainService   Domain = "SERVICE"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

type RodentError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	// Metadata carries command output, paths, share names and the like.
	// It is serialized into API responses and logged alongside the error.
	Metadata map[string]string `json:"metadata,omitempty"`

	cause error
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1300-1399: Command execution
// 1400-1499: Health check
// 1500-1599: Lifecycle management
// 1600-1699: Program errors
// 1700-1749: Shares errors
// 1750-1799: System errors
// 1850-1899: Service errors
// 1900-1949: Global settings errors
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound           = 1000 + iota // Config file not found
	ConfigInvalid                          // Invalid config format
	ConfigLoadFailed                       // Failed to load config
	ConfigWriteFailed                      // Failed to write config
	ConfigPermissionDenied                 // Permission denied accessing config
	ConfigDirectoryError                   // Config directory error
	ConfigValidationFailed                 // Config validation failed
	ConfigMarshalFailed                    // Config serialization failed
	ConfigUnmarshalFailed                  // Config deserialization failed
	ConfigHomeDirectoryError               // Error getting home directory
	ConfigReadError                        // Error reading config
	ConfigWriteError                       // Error writing config
	ConfigParseError                       // Error parsing config
)

const (
	// Server Errors (1100-1199)
	ServerStart             = 1100 + iota // Failed to start server
	ServerShutdown                        // Error during shutdown
	ServerBind                            // Failed to bind port
	ServerTimeout                         // Operation timeout
	ServerMiddleware                      // Middleware error
	ServerRouting                         // Routing error
	ServerRequestValidation               // Request validation failed
	ServerResponseError                   // Response generation error
	ServerContextCancelled                // Context cancelled
	ServerTLSError                        // TLS configuration error
	ServerInternalError
	ServerBadRequest // Bad request error
)

const (
	// Command Execution (1300-1399)
	CommandNotFound     = 1300 + iota // Command not found
	CommandExecution                  // Execution failed
	CommandTimeout                    // Command timed out
	CommandPermission                 // Permission denied
	CommandInvalidInput               // Invalid command input
	CommandOutputParse                // Output parsing failed
	CommandSignal                     // Signal handling failed
	CommandContext                    // Context handling error
	CommandPipe                       // Command pipe error
	CommandWorkDir                    // Working directory error
)

const (
	// Health Check (1400-1499)
	HealthCheckFailed     = 1400 + iota // Health check failed
	HealthCheckTimeout                  // Health check timed out
	HealthCheckComponent                // Component check failed
	HealthCheckConfig                   // Health check config error
	HealthCheckEndpoint                 // Endpoint error
	HealthCheckClient                   // Client error
	HealthCheckValidation               // Validation error
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleSignal                 // Signal handling error
	LifecycleReload                 // Config reload failed
	LifecycleHook                   // Lifecycle hook error
	LifecycleLock                   // Lock acquisition failed
	LifecycleDaemon                 // Daemon operation failed
)

const (
	// Program Errors (1600-1699)
	RodentMisc = 1600 + iota // Miscellaneous program error
	FSError
	NotFoundError  // Not found error
	LoggerError    // Logger error
	SchedulerError // Scheduler error
	WatcherError   // File watcher error
)

const (
	// Shares Errors (1700-1749)
	SharesInvalidInput    = 1700 + iota // Invalid share input or parameters
	SharesOperationFailed               // Generic share operation failure
	SharesNotFound                      // Share not found
	SharesAlreadyExists                 // Share already exists
	SharesServiceFailed                 // Share service operation failed
	SharesInternalError                 // Internal shares subsystem error
	SharesAccessDenied                  // Access denied for share operation
	SharesPathInvalid                   // Invalid path for share
	SharesConfigInvalid                 // Invalid share configuration
	SharesReserved                      // Reserved share cannot be modified
	SharesReloadFailed                  // Config written but service reload failed
	SharesWriteFailed                   // Staged config write failed
)

const (
	// System Errors (1750-1799)
	OperationFailed  = 1750 + iota // Generic operation failed
	PermissionDenied               // Permission denied
	SystemUserLookup               // User lookup failed
	SystemGroupLookup              // Group lookup failed
	SystemPathProvision            // Directory provisioning failed
)

const (
	// Service Errors (1850-1899)
	ServiceNotFound      = 1850 + iota // Service not found
	ServiceUpdateFailed                // Service update failed
	ServiceStartFailed                 // Service start failed
	ServiceStopFailed                  // Service stop failed
	ServiceRestartFailed               // Service restart failed
	ServiceStatusFailed                // Service status check failed
)

const (
	// Global Settings Errors (1900-1949)
	SettingsReadFailed     = 1900 + iota // Live config could not be read
	SettingsWriteFailed                  // Live config could not be written
	SettingsBackupFailed                 // Backup before write failed
	SettingsValidateFailed               // Config checker rejected the result
	SettingsRestoreFailed                // Restoring the backup failed
	SettingsInvalidInput                 // Invalid global settings input
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	// Config
	ConfigNotFound:           {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:            {"Invalid configuration", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed:         {"Failed to load configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteFailed:        {"Failed to write configuration", DomainConfig, http.StatusInternalServerError},
	ConfigPermissionDenied:   {"Permission denied accessing configuration", DomainConfig, http.StatusForbidden},
	ConfigDirectoryError:     {"Configuration directory error", DomainConfig, http.StatusInternalServerError},
	ConfigValidationFailed:   {"Configuration validation failed", DomainConfig, http.StatusBadRequest},
	ConfigMarshalFailed:      {"Failed to serialize configuration", DomainConfig, http.StatusInternalServerError},
	ConfigUnmarshalFailed:    {"Failed to deserialize configuration", DomainConfig, http.StatusInternalServerError},
	ConfigHomeDirectoryError: {"Failed to get home directory", DomainConfig, http.StatusInternalServerError},
	ConfigReadError:          {"Error reading configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteError:         {"Error writing configuration", DomainConfig, http.StatusInternalServerError},
	ConfigParseError:         {"Error parsing configuration", DomainConfig, http.StatusBadRequest},

	// Server
	ServerStart:             {"Failed to start server", DomainServer, http.StatusInternalServerError},
	ServerShutdown:          {"Error during server shutdown", DomainServer, http.StatusInternalServerError},
	ServerBind:              {"Failed to bind server port", DomainServer, http.StatusInternalServerError},
	ServerTimeout:           {"Server operation timed out", DomainServer, http.StatusGatewayTimeout},
	ServerMiddleware:        {"Middleware error", DomainServer, http.StatusInternalServerError},
	ServerRouting:           {"Routing error", DomainServer, http.StatusNotFound},
	ServerRequestValidation: {"Request validation failed", DomainServer, http.StatusBadRequest},
	ServerResponseError:     {"Failed to generate response", DomainServer, http.StatusInternalServerError},
	ServerContextCancelled:  {"Request context cancelled", DomainServer, http.StatusRequestTimeout},
	ServerTLSError:          {"TLS configuration error", DomainServer, http.StatusInternalServerError},
	ServerInternalError:     {"Internal server error", DomainServer, http.StatusInternalServerError},
	ServerBadRequest:        {"Bad request", DomainServer, http.StatusBadRequest},

	// Command
	CommandNotFound:     {"Command not found", DomainCommand, http.StatusNotFound},
	CommandExecution:    {"Command execution failed", DomainCommand, http.StatusInternalServerError},
	CommandTimeout:      {"Command timed out", DomainCommand, http.StatusGatewayTimeout},
	CommandPermission:   {"Permission denied executing command", DomainCommand, http.StatusForbidden},
	CommandInvalidInput: {"Invalid command input", DomainCommand, http.StatusBadRequest},
	CommandOutputParse:  {"Failed to parse command output", DomainCommand, http.StatusInternalServerError},
	CommandSignal:       {"Command signal handling failed", DomainCommand, http.StatusInternalServerError},
	CommandContext:      {"Command context error", DomainCommand, http.StatusInternalServerError},
	CommandPipe:         {"Command pipe error", DomainCommand, http.StatusInternalServerError},
	CommandWorkDir:      {"Command working directory error", DomainCommand, http.StatusInternalServerError},

	// Health
	HealthCheckFailed:     {"Health check failed", DomainHealth, http.StatusServiceUnavailable},
	HealthCheckTimeout:    {"Health check timed out", DomainHealth, http.StatusGatewayTimeout},
	HealthCheckComponent:  {"Component health check failed", DomainHealth, http.StatusServiceUnavailable},
	HealthCheckConfig:     {"Health check configuration error", DomainHealth, http.StatusInternalServerError},
	HealthCheckEndpoint:   {"Health check endpoint error", DomainHealth, http.StatusBadGateway},
	HealthCheckClient:     {"Health check client error", DomainHealth, http.StatusInternalServerError},
	HealthCheckValidation: {"Health check validation error", DomainHealth, http.StatusBadRequest},

	// Lifecycle
	LifecyclePID:      {"PID file operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleShutdown: {"Shutdown process error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleSignal:   {"Signal handling error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleReload:   {"Config reload failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleHook:     {"Lifecycle hook error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleLock:     {"Lock acquisition failed", DomainLifecycle, http.StatusConflict},
	LifecycleDaemon:   {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},

	// Program
	RodentMisc:     {"Miscellaneous error", DomainMisc, http.StatusInternalServerError},
	FSError:        {"Filesystem error", DomainMisc, http.StatusInternalServerError},
	NotFoundError:  {"Resource not found", DomainMisc, http.StatusNotFound},
	LoggerError:    {"Logger error", DomainMisc, http.StatusInternalServerError},
	SchedulerError: {"Scheduler error", DomainMisc, http.StatusInternalServerError},
	WatcherError:   {"File watcher error", DomainMisc, http.StatusInternalServerError},

	// Shares
	SharesInvalidInput:    {"Invalid share input", DomainShares, http.StatusBadRequest},
	SharesOperationFailed: {"Share operation failed", DomainShares, http.StatusInternalServerError},
	SharesNotFound:        {"Share not found", DomainShares, http.StatusNotFound},
	SharesAlreadyExists:   {"Share already exists", DomainShares, http.StatusConflict},
	SharesServiceFailed:   {"Share service operation failed", DomainShares, http.StatusInternalServerError},
	SharesInternalError:   {"Internal shares error", DomainShares, http.StatusInternalServerError},
	SharesAccessDenied:    {"Access denied for share operation", DomainShares, http.StatusForbidden},
	SharesPathInvalid:     {"Invalid share path", DomainShares, http.StatusBadRequest},
	SharesConfigInvalid:   {"Invalid share configuration", DomainShares, http.StatusBadRequest},
	SharesReserved:        {"Reserved share cannot be modified", DomainShares, http.StatusForbidden},
	SharesReloadFailed:    {"Share configuration saved but service reload failed", DomainShares, http.StatusBadGateway},
	SharesWriteFailed:     {"Failed to write share configuration", DomainShares, http.StatusInternalServerError},

	// System
	OperationFailed:     {"Operation failed", DomainSystem, http.StatusInternalServerError},
	PermissionDenied:    {"Permission denied", DomainSystem, http.StatusForbidden},
	SystemUserLookup:    {"Failed to look up users", DomainSystem, http.StatusInternalServerError},
	SystemGroupLookup:   {"Failed to look up groups", DomainSystem, http.StatusInternalServerError},
	SystemPathProvision: {"Failed to provision directory", DomainSystem, http.StatusInternalServerError},

	// Service
	ServiceNotFound:      {"Service not found", DomainService, http.StatusNotFound},
	ServiceUpdateFailed:  {"Service update failed", DomainService, http.StatusInternalServerError},
	ServiceStartFailed:   {"Service start failed", DomainService, http.StatusInternalServerError},
	ServiceStopFailed:    {"Service stop failed", DomainService, http.StatusInternalServerError},
	ServiceRestartFailed: {"Service restart failed", DomainService, http.StatusBadGateway},
	ServiceStatusFailed:  {"Service status check failed", DomainService, http.StatusInternalServerError},

	// Settings
	SettingsReadFailed:     {"Failed to read global settings", DomainSettings, http.StatusInternalServerError},
	SettingsWriteFailed:    {"Failed to write global settings", DomainSettings, http.StatusInternalServerError},
	SettingsBackupFailed:   {"Failed to back up configuration", DomainSettings, http.StatusInternalServerError},
	SettingsValidateFailed: {"Configuration check failed; previous configuration restored", DomainSettings, http.StatusUnprocessableEntity},
	SettingsRestoreFailed:  {"Failed to restore configuration backup", DomainSettings, http.StatusInternalServerError},
	SettingsInvalidInput:   {"Invalid global settings", DomainSettings, http.StatusBadRequest},
}
