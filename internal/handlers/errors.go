// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentflow/tf-backend/internal/models"
	"github.com/talentflow/tf-backend/internal/ports"
	"github.com/talentflow/tf-backend/internal/services"
	"github.com/talentflow/tf-backend/internal/utils"
)

// handleServiceError maps the typed service errors onto HTTP responses so
// every handler reports failures the same way.
func handleServiceError(c *gin.Context, err error) {
	var (
		tpNotFound       *services.ThirdPartyNotFoundError
		docNotFound      *services.DocumentNotFoundError
		requestNotFound  *services.ContractRequestNotFoundError
		contractNotFound *services.ContractNotFoundError
		linkNotFound     *services.MagicLinkNotFoundError
		linkExpired      *services.MagicLinkExpiredError
		linkRevoked      *services.MagicLinkRevokedError
		complianceBlock  *services.ComplianceBlockError
		badDocTransition *models.InvalidDocumentTransitionError
		badReqTransition *models.InvalidContractStatusError
		badSiren         *models.InvalidSirenError
	)

	switch {
	case errors.As(err, &tpNotFound),
		errors.As(err, &docNotFound),
		errors.As(err, &requestNotFound),
		errors.As(err, &contractNotFound),
		errors.As(err, &linkNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.As(err, &linkExpired):
		utils.GoneResponse(c, "LINK_EXPIRED", err.Error())
	case errors.As(err, &linkRevoked):
		utils.GoneResponse(c, "LINK_REVOKED", err.Error())
	case errors.As(err, &complianceBlock):
		utils.ErrorResponse(c, http.StatusForbidden, "COMPLIANCE_BLOCKED", err.Error(), nil)
	case errors.As(err, &badDocTransition), errors.As(err, &badReqTransition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, ports.ErrPositioningConflict):
		utils.ConflictResponse(c, "An active contract request already exists for this positioning")
	case errors.As(err, &badSiren):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
