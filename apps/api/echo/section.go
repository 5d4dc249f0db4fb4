package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/section"
)

type sectionApi struct {
	deps ServerDeps
}

func registerSectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sectionApi{deps: deps}

	sg := g.Group("/sections", jwt)
	sg.POST("", api.create, staffMiddleware())
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.POST("/enroll", api.enroll, staffMiddleware())
	dg.DELETE("/enroll", api.unenroll, staffMiddleware())
	dg.GET("/roster", api.roster, staffMiddleware())
}

// Handlers

func (api *sectionApi) create(ctx echo.Context) error {
	var data section.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sec, err := api.deps.SectionSvc.Create(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		if errors.Cause(err) == section.ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *sectionApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var secs []section.Section
	switch {
	case ctxUsr.IsAdmin():
		secs, err = api.deps.SectionSvc.QueryAll(ctx.Request().Context())
	case ctxUsr.IsTeacher():
		secs, err = api.deps.SectionSvc.QueryByTeacher(ctx.Request().Context(), ctxUsr.ID)
	default:
		secs, err = api.deps.SectionSvc.QueryByStudent(ctx.Request().Context(), ctxUsr.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if secs == nil {
		secs = []section.Section{}
	}
	return ctx.JSON(http.StatusOK, secs)
}

func (api *sectionApi) retrieve(ctx echo.Context) error {
	sec, err := api.deps.SectionSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) update(ctx echo.Context) error {
	sec, err := api.deps.SectionSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting section")
	}

	var data section.UpdateSection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSection")
	}
	if err = data.Validate(api.deps.Validate, sec); err != nil {
		return err
	}

	sec, err = api.deps.SectionSvc.Update(ctx.Request().Context(), sec.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.SectionSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting sections")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sectionApi) enroll(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	err := api.deps.SectionSvc.Enroll(ctx.Request().Context(), ctx.Param("id"), data.StudentID)
	if err != nil {
		if errors.Cause(err) == section.ErrAlreadyEnrolled {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Student enrolled."})
}

func (api *sectionApi) unenroll(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	err := api.deps.SectionSvc.Unenroll(ctx.Request().Context(), ctx.Param("id"), data.StudentID)
	if err != nil {
		if errors.Cause(err) == section.ErrNotEnrolled {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
		}
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sectionApi) roster(ctx echo.Context) error {
	ids, err := api.deps.SectionSvc.Roster(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting roster")
	}
	if ids == nil {
		ids = []string{}
	}
	return ctx.JSON(http.StatusOK, RosterResponse{StudentIDs: ids, Count: len(ids)})
}

type (
	EnrollmentRequest struct {
		StudentID string `json:"student_id" validate:"required"`
	}

	RosterResponse struct {
		StudentIDs []string `json:"student_ids"`
		Count      int      `json:"count"`
	}
)
