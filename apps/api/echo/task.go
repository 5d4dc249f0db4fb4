package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/task"
)

type taskApi struct {
	deps ServerDeps
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := taskApi{deps: deps}

	tg := g.Group("/tasks", jwt)
	tg.POST("", api.create, staffMiddleware())
	tg.GET("", api.query)
	tg.GET("/prioritized", api.queryPrioritized)
	tg.GET("/next-urgent", api.nextUrgent)
	tg.DELETE("", api.destroyMultiple, staffMiddleware())

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	t, res, err := api.deps.TaskSvc.Create(ctx.Request().Context(), data, ctxUsr.ID, ctxUsr.Name)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, TaskCreateResponse{Task: t, Notification: res})
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}

	tasks, err := api.deps.TaskSvc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

// queryPrioritized returns a section's tasks ordered most urgent first, each
// with its computed classification.
func (api *taskApi) queryPrioritized(ctx echo.Context) error {
	sectionID := ctx.QueryParam("section_id")
	if sectionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "section_id is required")
	}

	now := time.Now().UTC()
	tasks, err := api.deps.TaskSvc.QuerySorted(ctx.Request().Context(), sectionID, now)
	if err != nil {
		return errors.Wrap(err, "querying prioritized tasks")
	}

	resp := make([]PrioritizedTask, 0, len(tasks))
	for _, t := range tasks {
		cls, err := task.Classify(t, now)
		if err != nil {
			return errors.Wrap(err, "classifying task")
		}
		resp = append(resp, PrioritizedTask{Task: t, Classification: cls})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *taskApi) nextUrgent(ctx echo.Context) error {
	sectionID := ctx.QueryParam("section_id")
	if sectionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "section_id is required")
	}

	now := time.Now().UTC()
	t, err := api.deps.TaskSvc.NextUrgent(ctx.Request().Context(), sectionID, now)
	if err != nil {
		return errors.Wrap(err, "getting next urgent task")
	}
	if t == nil {
		return ctx.JSON(http.StatusOK, nil)
	}
	cls, err := task.Classify(*t, now)
	if err != nil {
		return errors.Wrap(err, "classifying task")
	}
	return ctx.JSON(http.StatusOK, PrioritizedTask{Task: *t, Classification: cls})
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, err := api.deps.TaskSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting task")
	}
	cls, err := task.Classify(t, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "classifying task")
	}
	return ctx.JSON(http.StatusOK, PrioritizedTask{Task: t, Classification: cls})
}

func (api *taskApi) update(ctx echo.Context) error {
	t, err := api.deps.TaskSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting task")
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(api.deps.Validate, t); err != nil {
		return err
	}

	t, err = api.deps.TaskSvc.Update(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	if _, err := api.deps.TaskSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "getting task")
	}
	if err := api.deps.TaskSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.TaskSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	TaskCreateResponse struct {
		Task         task.Task           `json:"task"`
		Notification notification.Result `json:"notification"`
	}

	PrioritizedTask struct {
		Task           task.Task           `json:"task"`
		Classification task.Classification `json:"classification"`
	}
)
