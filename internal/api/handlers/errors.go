package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// respondError maps service errors onto the JSON error envelope.
func respondError(c *gin.Context, err error, message string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.SendNotFound(c, message)
	case errors.Is(err, utils.ErrImportFailed):
		utils.SendError(c, http.StatusBadRequest, utils.NewAppError(utils.ErrCodeImport, message, err.Error()))
	case errors.Is(err, utils.ErrInvalidInput):
		utils.SendValidationError(c, message, err.Error())
	default:
		utils.SendInternalError(c, message)
	}
}
