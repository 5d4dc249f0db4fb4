package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/poll"
)

type pollApi struct {
	deps ServerDeps
}

func registerPollAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := pollApi{deps: deps}

	pg := g.Group("/polls", jwt)
	pg.POST("", api.create, staffMiddleware())
	pg.GET("", api.query)
	pg.DELETE("", api.destroyMultiple, staffMiddleware())

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/vote", api.vote)
	dg.POST("/close", api.close, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// Handlers

func (api *pollApi) create(ctx echo.Context) error {
	var data poll.NewPoll
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPoll")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	p, res, err := api.deps.PollSvc.Create(ctx.Request().Context(), data, ctxUsr.ID, ctxUsr.Name)
	if err != nil {
		return errors.Wrap(err, "creating poll")
	}
	return ctx.JSON(http.StatusCreated, PollCreateResponse{Poll: p, Notification: res})
}

func (api *pollApi) query(ctx echo.Context) error {
	sectionID := ctx.QueryParam("section_id")
	if sectionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "section_id is required")
	}

	polls, err := api.deps.PollSvc.QueryBySection(ctx.Request().Context(), sectionID)
	if err != nil {
		return errors.Wrap(err, "querying polls")
	}
	if polls == nil {
		polls = []poll.Poll{}
	}
	return ctx.JSON(http.StatusOK, polls)
}

func (api *pollApi) retrieve(ctx echo.Context) error {
	p, err := api.deps.PollSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting poll")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pollApi) vote(ctx echo.Context) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	err = api.deps.PollSvc.Vote(ctx.Request().Context(), ctx.Param("id"), data.OptionID, ctxUsr.ID)
	if err != nil {
		switch errors.Cause(err) {
		case poll.ErrClosed:
			return core.NewValidationError(err)
		case poll.ErrUnknownOption:
			return core.NewValidationError(err, core.FieldError{Field: "option_id", Error: err.Error()})
		}
		return errors.Wrap(err, "voting")
	}

	// return fresh tallies
	p, err := api.deps.PollSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting poll")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pollApi) close(ctx echo.Context) error {
	p, err := api.deps.PollSvc.Close(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "closing poll")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pollApi) destroy(ctx echo.Context) error {
	if _, err := api.deps.PollSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "getting poll")
	}
	if err := api.deps.PollSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting poll")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *pollApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.PollSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting polls")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	VoteRequest struct {
		OptionID string `json:"option_id" validate:"required"`
	}

	PollCreateResponse struct {
		Poll         poll.Poll           `json:"poll"`
		Notification notification.Result `json:"notification"`
	}
)
