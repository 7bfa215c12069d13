// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/smbadmin/pkg/errors"
)

// Helper to add errors to context
func APIError(c *gin.Context, err error) {
	var rodentErr *errors.RodentError
	if errors.As(err, &rodentErr) {
		_ = c.Error(rodentErr)
		c.JSON(rodentErr.HTTPStatus, gin.H{
			"error": gin.H{
				"code":      rodentErr.Code,
				"domain":    rodentErr.Domain,
				"message":   rodentErr.Message,
				"details":   rodentErr.Details,
				"metadata":  rodentErr.Metadata,
				"timestamp": time.Now().Format(time.RFC3339),
			},
		})
	} else {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"message":   err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
			},
		})
	}
	c.Abort()
}

// ReadResetBody reads and resets the request body so it can be re-read by subsequent handlers
func ReadResetBody(c *gin.Context) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}

	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return body, nil
}

// ResetBody resets the request body so it can be re-read by subsequent handlers
func ResetBody(c *gin.Context, body []byte) {
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
}
