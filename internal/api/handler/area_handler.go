package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cellarstock/inventory-auth/internal/api/middleware"
	"github.com/cellarstock/inventory-auth/internal/core/domain"
	"github.com/cellarstock/inventory-auth/internal/core/gate"
)

// AreaHandler renders the shell of a protected page. The pages themselves
// are drawn by the front end; this only reports which layout to use.
type AreaHandler struct {
	sessions middleware.SessionReader
}

func NewAreaHandler(sessions middleware.SessionReader) *AreaHandler {
	return &AreaHandler{sessions: sessions}
}

// Page handles GET /{area}/:page behind the access gate.
//
// @Summary      Render a protected page shell
// @Tags         areas
// @Produce      json
// @Param        page  path      string  true  "Page name (e.g. dashboard)"
// @Success      200   {object}  pageResponse
// @Success      302   "Redirect to /login or /"
// @Failure      404   {object}  errorResponse
// @Failure      503   {object}  map[string]string
// @Router       /admin/{page} [get]
// @Router       /staff/{page} [get]
func (h *AreaHandler) Page(c echo.Context) error {
	area, _ := c.Get(middleware.KeyArea).(domain.Area)
	layout, _ := c.Get(middleware.KeyLayout).(gate.Layout)
	account, _ := c.Get(middleware.KeyAccount).(*domain.Account)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	page := c.Param("page")
	if !area.HasPage(page) {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}

	return c.JSON(http.StatusOK, pageResponse{
		Area:    area.Name,
		Page:    page,
		Layout:  string(layout),
		Account: toAccountResponse(account),
	})
}

// Root handles GET / by sending the caller to its dashboard or to login.
//
// @Summary      Entry point
// @Tags         areas
// @Success      302  "Redirect to the role dashboard or /login"
// @Router       / [get]
func (h *AreaHandler) Root(c echo.Context) error {
	state := h.sessions.State()
	if state.Account == nil {
		return c.Redirect(http.StatusFound, middleware.LoginPath)
	}
	return c.Redirect(http.StatusFound, gate.HomeFor(state.Account.Role))
}

// LoginEntry handles GET /login, echoing the return-to hint for the form.
//
// @Summary      Login entry point
// @Tags         areas
// @Produce      json
// @Param        from  query     string  false  "Originally requested path"
// @Success      200   {object}  loginEntryResponse
// @Router       /login [get]
func (h *AreaHandler) LoginEntry(c echo.Context) error {
	resp := loginEntryResponse{Message: "sign in required"}
	if from := c.QueryParam("from"); isLocalPath(from) {
		resp.ReturnTo = from
	}
	return c.JSON(http.StatusOK, resp)
}
