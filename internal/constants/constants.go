// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package constants

// Build-time variables set via ldflags
var (
	Version   = "v0.0.1-dev" // Set via -X flag during build
	CommitSHA = "unknown"    // Set via -X flag during build
	BuildTime = "unknown"    // Set via -X flag during build
)

const (
	AppName = "smbadmin"

	// config
	ConfigFileName = "smbadmin.yml"
	EnvPrefix      = "SMBADMIN"
	PIDFileName    = "smbadmin.pid"

	// samba profiles
	ProfileStaged = "staged"
	ProfileLive   = "live"

	// routes
	APIVersion  = "v1"
	APIBase     = "/api/" + APIVersion + "/smbadmin"
	APIShares   = APIBase + "/shares"
	APIGlobal   = APIBase + "/global"
	APIConfig   = APIBase + "/config"
	APIPaths    = APIBase + "/paths"
	APIServices = APIBase + "/services"
	APISystem   = APIBase + "/system"
)
