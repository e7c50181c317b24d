package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// writeError maps domain sentinels onto HTTP statuses. The conflict group
// goes first: ErrPhoneNumberTaken belongs to the ErrInvalidPhoneNumber
// family and must win over the generic 400 mapping. Anything unmapped is a
// 500 with the detail kept out of the response body.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrPhoneNumberTaken),
		errors.Is(err, errs.ErrRetryInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidParameter),
		errors.Is(err, errs.ErrInvalidSelector),
		errors.Is(err, errs.ErrInvalidPhoneNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrBroadcastNotFound),
		errors.Is(err, errs.ErrAlertNotFound),
		errors.Is(err, errs.ErrPersonNotFound),
		errors.Is(err, errs.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
