package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reconciledomain "github.com/smallbiznis/entitle/internal/reconcile/domain"
)

type redeemLicenseRequest struct {
	Code     string `json:"code"`
	UserUUID string `json:"user_uuid"`
}

func (s *Server) RedeemLicense(c *gin.Context) {
	var req redeemLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	req.UserUUID = strings.TrimSpace(req.UserUUID)
	if req.Code == "" || req.UserUUID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err := s.reconcileSvc.RedeemLicense(c.Request.Context(), reconciledomain.RedeemLicenseRequest{
		Code:     req.Code,
		UserUUID: req.UserUUID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}
