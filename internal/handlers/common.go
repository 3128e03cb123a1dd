package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/utils"
)

// respondFlowError maps a flow error code to an HTTP response.
func respondFlowError(c *gin.Context, err error) {
	msg := auth.MessageOf(err)
	switch auth.CodeOf(err) {
	case auth.CodeAlreadyExists:
		utils.Conflict(c, msg)
	case auth.CodeInvalidCredentials, auth.CodeProfileNotFound, auth.CodeDoctorProfileError:
		utils.Unauthorized(c, msg)
	case auth.CodeAccessDenied:
		utils.Forbidden(c, msg)
	case auth.CodeProvisioningFailed:
		utils.BadRequest(c, msg)
	default:
		utils.InternalServerError(c, msg)
	}
}
