package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/internal/services"
	appErrors "github.com/charlesng35/dbnav/pkg/errors"
	"github.com/charlesng35/dbnav/pkg/response"
)

// NavigationHandler exposes the navigation tree.
type NavigationHandler struct {
	svc *services.NavigationService
}

// NewNavigationHandler constructs a NavigationHandler.
func NewNavigationHandler(svc *services.NavigationService) *NavigationHandler {
	return &NavigationHandler{svc: svc}
}

type treeQuery struct {
	APath     string `form:"apath" json:"apath" validate:"omitempty,base64path"`
	VPath     string `form:"vpath" json:"vpath" validate:"omitempty,base64path"`
	Pos       int    `form:"pos" json:"pos" validate:"gte=0"`
	Pos2Name  string `form:"pos2_name" json:"pos2_name"`
	Pos2Value int    `form:"pos2_value" json:"pos2_value" validate:"gte=0"`
	Pos3Name  string `form:"pos3_name" json:"pos3_name"`
	Pos3Value int    `form:"pos3_value" json:"pos3_value" validate:"gte=0"`
	Search    string `form:"search" json:"search"`
	Search2   string `form:"search2" json:"search2"`
}

type presenceQuery struct {
	APath  string `form:"apath" json:"apath" validate:"omitempty,base64path"`
	Kind   string `form:"kind" json:"kind" validate:"required"`
	Search string `form:"search" json:"search"`
}

// Tree handles GET /api/navigation/tree.
func (h *NavigationHandler) Tree(c *gin.Context) {
	var query treeQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}

	tree, err := h.svc.Tree(requestContext(c), services.TreeRequest{
		APath:     query.APath,
		VPath:     query.VPath,
		Pos:       query.Pos,
		Pos2Name:  query.Pos2Name,
		Pos2Value: query.Pos2Value,
		Pos3Name:  query.Pos3Name,
		Pos3Value: query.Pos3Value,
		Search:    query.Search,
		Search2:   query.Search2,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := &response.Meta{
		Offset:  query.Pos,
		Limit:   h.svc.Settings().FirstLevelItems,
		Grouped: len(h.svc.Settings().DatabaseGroupSeparators()) > 0,
	}
	if tree.Total != nil {
		meta.Total = *tree.Total
	}
	response.SuccessWithMeta(c, http.StatusOK, tree, meta)
}

// Presence handles GET /api/navigation/presence.
func (h *NavigationHandler) Presence(c *gin.Context) {
	var query presenceQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}

	kind, ok := catalog.ParseKind(query.Kind)
	if !ok {
		response.Error(c, appErrors.NewBadRequest("unknown kind "+query.Kind))
		return
	}

	count, err := h.svc.Presence(requestContext(c), services.PresenceRequest{
		APath:  query.APath,
		Kind:   kind,
		Search: query.Search,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"kind": kind, "count": count})
}
