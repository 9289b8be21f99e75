package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
)

// CatalogHandler serves the static style/size catalogs so a frontend can
// render its selectors from the same source of truth the composer uses.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Catalog handles GET /api/v1/catalog.
func (h *CatalogHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles": catalog.Styles,
		"sizes":  catalog.Sizes,
	})
}
