package handlers

import "github.com/gin-gonic/gin"

// RegisterTaxonomyRoutes mounts the taxonomy admin API on rg. Guards are
// supplied by the caller per access level.
func RegisterTaxonomyRoutes(rg *gin.RouterGroup, taxonomyHandler *TaxonomyHandler, importHandler *ImportHandler, read, write gin.HandlerFunc) {
	taxonomy := rg.Group("/taxonomy")
	{
		// Read operations
		taxonomy.GET("", read, taxonomyHandler.GetTaxonomy)
		taxonomy.GET("/export", read, taxonomyHandler.ExportTaxonomy)
		taxonomy.GET("/import/template", read, importHandler.GetImportTemplate)

		// Write operations
		taxonomy.POST("/import", write, importHandler.ImportTaxonomy)
		taxonomy.POST("/categories", write, taxonomyHandler.CreateCategory)
		taxonomy.POST("/subcategories", write, taxonomyHandler.CreateSubcategory)
		taxonomy.PUT("/categories/:id/status", write, taxonomyHandler.UpdateCategoryStatus)
		taxonomy.PUT("/subcategories/:id/status", write, taxonomyHandler.UpdateSubcategoryStatus)
	}
}

// PassThrough is a no-op guard
func PassThrough(c *gin.Context) {
	c.Next()
}
