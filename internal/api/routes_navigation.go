package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dbnav/internal/handlers"
)

func registerNavigationRoutes(api *gin.RouterGroup, handler *handlers.NavigationHandler) {
	group := api.Group("/navigation")
	group.GET("/tree", handler.Tree)
	group.GET("/presence", handler.Presence)
}
