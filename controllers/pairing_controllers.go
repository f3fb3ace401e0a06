package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

// PairingController serves the link endpoints shared by waiters and cashiers.
type PairingController struct {
	Pairings *services.PairingService
}

func NewPairingController(pairings *services.PairingService) *PairingController {
	return &PairingController{Pairings: pairings}
}

func (pc *PairingController) Link(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,kitchen_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidCode)
		return
	}

	link, err := pc.Pairings.Link(requestContext(c), actor, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Linked to kitchen", gin.H{"code": link.KitchenCode})
}

func (pc *PairingController) Unlink(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	if err := pc.Pairings.Unlink(requestContext(c), actor); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unlinked", gin.H{"success": true})
}

func (pc *PairingController) Current(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	code, linked, err := pc.Pairings.Current(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current link", gin.H{"code": code, "linked": linked})
}
