package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/notification"
)

type notificationApi struct {
	deps ServerDeps
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{deps: deps}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("/read-all", api.markAllRead)

	dg := ng.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/read", api.markRead)
}

// Handlers

// query returns the calling user's notifications, newest first.
func (api *notificationApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifs, err := api.deps.NotifSvc.QueryByRecipient(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) retrieve(ctx echo.Context) error {
	notif, err := api.getOwned(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	notif, err := api.getOwned(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.NotifSvc.MarkRead(ctx.Request().Context(), notif.ID); err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Notification marked as read."})
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.deps.NotifSvc.MarkAllRead(ctx.Request().Context(), ctxUsr.ID); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All notifications marked as read."})
}

// getOwned fetches the notification and ensures it belongs to the calling user.
func (api *notificationApi) getOwned(ctx echo.Context) (notification.Notification, error) {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "getting context user")
	}

	notif, err := api.deps.NotifSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	if notif.RecipientID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return notification.Notification{}, errHttpNotFound
	}
	return notif, nil
}
