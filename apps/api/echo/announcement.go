package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/notification"
)

type announcementApi struct {
	deps ServerDeps
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := announcementApi{deps: deps}

	ag := g.Group("/announcements", jwt)
	ag.POST("", api.create, staffMiddleware())
	ag.GET("", api.query)
	ag.DELETE("", api.destroyMultiple, staffMiddleware())

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// Handlers

func (api *announcementApi) create(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ann, res, err := api.deps.AnnouncementSvc.Create(ctx.Request().Context(), data, ctxUsr.ID, ctxUsr.Name)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, AnnouncementCreateResponse{Announcement: ann, Notification: res})
}

func (api *announcementApi) query(ctx echo.Context) error {
	sectionID := ctx.QueryParam("section_id")
	if sectionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "section_id is required")
	}

	anns, err := api.deps.AnnouncementSvc.QueryBySection(ctx.Request().Context(), sectionID)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	ann, err := api.deps.AnnouncementSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) update(ctx echo.Context) error {
	ann, err := api.deps.AnnouncementSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting announcement")
	}

	var data announcement.UpdateAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	if err = data.Validate(api.deps.Validate, ann); err != nil {
		return err
	}

	ann, err = api.deps.AnnouncementSvc.Update(ctx.Request().Context(), ann.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if _, err := api.deps.AnnouncementSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "getting announcement")
	}
	if err := api.deps.AnnouncementSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *announcementApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.AnnouncementSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AnnouncementCreateResponse struct {
	Announcement announcement.Announcement `json:"announcement"`
	Notification notification.Result       `json:"notification"`
}
