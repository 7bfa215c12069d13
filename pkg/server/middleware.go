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

package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// Paths polled by probes and scrapers are not logged
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

func LoggerMiddleware(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)

		c.Next()

		if quietPaths[path] && len(c.Errors) == 0 {
			return
		}

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Int("bytes_out", c.Writer.Size()),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			attrs = append(attrs, slog.String("forwarded_for", xff))
		}

		if len(c.Errors) == 0 {
			l.Info("Request", logAttrs(attrs)...)
			return
		}

		for _, ginErr := range c.Errors {
			var re *errors.RodentError
			if errors.As(ginErr.Err, &re) {
				attrs = append(attrs,
					slog.Int("error_code", int(re.Code)),
					slog.String("error_domain", string(re.Domain)),
					slog.String("error_message", re.Message),
					slog.String("error_details", re.Details),
				)
				for k, v := range re.Metadata {
					attrs = append(attrs, slog.String("error_metadata_"+k, v))
				}
				continue
			}
			attrs = append(attrs, slog.String("error", ginErr.Error()))
		}

		switch {
		case c.Writer.Status() >= 500:
			l.Error("Server Error", logAttrs(attrs)...)
		case c.Writer.Status() >= 400:
			l.Warn("Client Error", logAttrs(attrs)...)
		default:
			l.Info("Request", logAttrs(attrs)...)
		}
	}
}

func logAttrs(attrs []slog.Attr) []any {
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	return args
}
