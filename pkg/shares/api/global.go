// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/settings"
	"github.com/stratastor/smbadmin/pkg/transfer"
)

// maxImportSize bounds an uploaded configuration
const maxImportSize = 1 << 20

// getGlobal gets the editable [global] settings
func (h *SharesHandler) getGlobal(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Settings.Read(c.Request.Context()))
}

// updateGlobal updates the [global] settings
func (h *SharesHandler) updateGlobal(c *gin.Context) {
	value, _ := c.Get("globalSettings")
	g, ok := value.(settings.GlobalSettings)
	if !ok {
		APIError(c, errors.New(errors.ServerInternalError, "global settings not found in context"))
		return
	}

	if err := h.deps.Settings.Write(c.Request.Context(), g); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Global settings updated successfully",
	})
}

// exportConfig downloads the live and staged files as one document
func (h *SharesHandler) exportConfig(c *gin.Context) {
	text, err := h.deps.Transfer.Export(c.Request.Context())
	if err != nil {
		APIError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+transfer.DownloadName+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// importConfig replaces both files from an uploaded document. The document
// may be sent as the "file" form field or as the raw request body.
func (h *SharesHandler) importConfig(c *gin.Context) {
	data, err := readImport(c)
	if err != nil {
		APIError(c, err)
		return
	}

	if err := h.deps.Transfer.Import(c.Request.Context(), data); err != nil {
		APIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Configuration imported successfully",
	})
}

func readImport(c *gin.Context) (string, error) {
	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", errors.New(errors.ServerRequestValidation, "missing file field").
				WithMetadata("error", err.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return "", errors.Wrap(err, errors.ServerRequestValidation)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return "", errors.Wrap(err, errors.ServerRequestValidation)
	}
	if len(data) > maxImportSize {
		return "", errors.New(errors.ServerRequestValidation, "configuration too large")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.New(errors.ServerRequestValidation, "empty configuration")
	}
	return string(data), nil
}
