package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

type TableController struct {
	Catalog *services.CatalogService
}

func NewTableController(catalog *services.CatalogService) *TableController {
	return &TableController{Catalog: catalog}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Catalog.Tables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}
