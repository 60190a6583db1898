package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects /s/<code>/ to the recipe page.
type ShortLinkHandler struct {
	linkService service.ILinkService
}

func NewShortLinkHandler(linkService service.ILinkService) *ShortLinkHandler {
	return &ShortLinkHandler{linkService: linkService}
}

func (h *ShortLinkHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/s/:code", h.Redirect)
	router.GET("/s/:code/", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	recipeID, err := h.linkService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/recipes/"+recipeID.String())
}
