package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

type AdminController struct {
	Admin *services.AdminService
	Audit *services.AuditRecorder
}

func NewAdminController(admin *services.AdminService, audit *services.AuditRecorder) *AdminController {
	return &AdminController{Admin: admin, Audit: audit}
}

type productRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Category    string           `json:"category" binding:"required,product_category"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Description string           `json:"description"`
}

type tableRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Capacity int    `json:"capacity" binding:"omitempty,min=1"`
	Status   string `json:"status" binding:"omitempty,table_status"`
}

type userPatch struct {
	Username *string      `json:"username" binding:"omitempty,min=3,max=100"`
	Role     *models.Role `json:"role" binding:"omitempty,staff_role"`
	IsActive *bool        `json:"is_active"`
}

type productPatch struct {
	Name     *string                 `json:"name" binding:"omitempty,max=255"`
	Category *models.ProductCategory `json:"category" binding:"omitempty,product_category"`
	Price    *decimal.Decimal        `json:"price"`
	Stock    *int                    `json:"stock" binding:"omitempty,min=0"`
	IsActive *bool                   `json:"is_active"`
}

type tablePatch struct {
	Name     *string             `json:"name" binding:"omitempty,max=50"`
	Capacity *int                `json:"capacity" binding:"omitempty,min=1"`
	Status   *models.TableStatus `json:"status" binding:"omitempty,table_status"`
}

// ListEntities -> GET /admin/entities/:entity
func (ac *AdminController) ListEntities(c *gin.Context) {
	actor, kind, ok := ac.entityRequest(c)
	if !ok {
		return
	}

	list, err := ac.Admin.List(c.Request.Context(), actor, kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("List of %s", kind), list)
}

func (ac *AdminController) GetEntity(c *gin.Context) {
	actor, kind, ok := ac.entityRequest(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entity, err := ac.Admin.Get(c.Request.Context(), actor, kind, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Entity detail", entity)
}

// CreateEntity accepts products and tables. Users sign up through /register.
func (ac *AdminController) CreateEntity(c *gin.Context) {
	actor, kind, ok := ac.entityRequest(c)
	if !ok {
		return
	}
	ctx := requestContext(c)

	switch kind {
	case services.EntityProducts:
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		product, err := ac.Admin.CreateProduct(ctx, actor, services.ProductInput{
			Name:        req.Name,
			Category:    models.ProductCategory(req.Category),
			Price:       *req.Price,
			Stock:       req.Stock,
			Description: req.Description,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Product created", product)
	case services.EntityTables:
		var req tableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		table, err := ac.Admin.CreateTable(ctx, actor, services.TableInput{
			Name:     req.Name,
			Capacity: req.Capacity,
			Status:   models.TableStatus(req.Status),
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Table created", table)
	default:
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("%s cannot be created here", kind))
	}
}

func (ac *AdminController) UpdateEntity(c *gin.Context) {
	actor, kind, ok := ac.entityRequest(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ctx := requestContext(c)

	var updated interface{}
	switch kind {
	case services.EntityUsers:
		var req userPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		updated, err = ac.Admin.UpdateUser(ctx, actor, id, services.UserUpdate{
			Username: req.Username,
			Role:     req.Role,
			IsActive: req.IsActive,
		})
	case services.EntityProducts:
		var req productPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		updated, err = ac.Admin.UpdateProduct(ctx, actor, id, services.ProductUpdate{
			Name:     req.Name,
			Category: req.Category,
			Price:    req.Price,
			Stock:    req.Stock,
			IsActive: req.IsActive,
		})
	case services.EntityTables:
		var req tablePatch
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		updated, err = ac.Admin.UpdateTable(ctx, actor, id, services.TableUpdate{
			Name:     req.Name,
			Capacity: req.Capacity,
			Status:   req.Status,
		})
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Entity updated", updated)
}

func (ac *AdminController) DeleteEntity(c *gin.Context) {
	actor, kind, ok := ac.entityRequest(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Admin.Delete(requestContext(c), actor, kind, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Entity deleted", gin.H{"success": true})
}

// GetAuditLogs -> GET /admin/audit-logs?limit=
func (ac *AdminController) GetAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := ac.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Audit log", logs)
}

func (ac *AdminController) entityRequest(c *gin.Context) (services.Actor, services.EntityKind, bool) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return services.Actor{}, "", false
	}
	kind, err := services.ParseEntityKind(c.Param("entity"))
	if err != nil {
		respondServiceError(c, err)
		return services.Actor{}, "", false
	}
	return actor, kind, true
}
