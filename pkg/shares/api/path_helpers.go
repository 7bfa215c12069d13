// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/url"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/smbadmin/internal/common"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/paths"
)

// ValidateFilesystemPath middleware for validating filesystem paths taken
// from the query string or a JSON body
func ValidateFilesystemPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		pathParam := c.Query("path")
		if pathParam == "" && c.Request.Body != nil {
			body, err := common.ReadResetBody(c)
			if err == nil && len(body) > 0 {
				var req PathRequest
				if err := json.Unmarshal(body, &req); err == nil {
					pathParam = req.Path
				}
			}
		}

		if pathParam == "" {
			APIError(c, errors.New(errors.SharesInvalidInput, "Path cannot be empty"))
			return
		}

		// URL decode the path if needed
		decodedPath, err := url.PathUnescape(pathParam)
		if err != nil {
			APIError(c, errors.New(errors.SharesInvalidInput, "Invalid URL encoding in path").
				WithMetadata("path", pathParam).
				WithMetadata("error", err.Error()))
			return
		}

		if err := paths.CheckSyntax(decodedPath); err != nil {
			APIError(c, err)
			return
		}

		c.Set("cleanPath", filepath.Clean(decodedPath))
		c.Next()
	}
}

// GetCleanPath gets the cleaned and validated path from the context
func GetCleanPath(c *gin.Context) string {
	if path, exists := c.Get("cleanPath"); exists {
		return path.(string)
	}
	return ""
}
