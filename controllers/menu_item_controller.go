package controllers

import (
	"log/slog"
	"net/http"

	"github.com/blogem/authsession/services"
	"github.com/blogem/authsession/session"
	"github.com/blogem/authsession/userctx"
)

// MenuItemController proxies the menu API using the session's access token
type MenuItemController struct {
	store   *session.Store
	baseURL string
	logger  *slog.Logger
}

// NewMenuItemController creates a new menu item controller
func NewMenuItemController(store *session.Store, baseURL string, logger *slog.Logger) *MenuItemController {
	return &MenuItemController{store: store, baseURL: baseURL, logger: logger}
}

// Index handles GET /menuitems
func (c *MenuItemController) Index(w http.ResponseWriter, r *http.Request) {
	client, err := services.BuildMenuItemClient(r.Context(), c.baseURL, c.store.Session())
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := client.GetMenuItems(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to load menu items", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream_error", Message: err.Error()})
		return
	}

	c.logger.DebugContext(r.Context(), "menu items loaded",
		slog.String("user", userctx.GetUsername(r.Context())),
		slog.Int("count", len(items)))
	writeJSON(w, http.StatusOK, items)
}
