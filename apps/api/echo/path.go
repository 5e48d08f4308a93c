package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/njia/core/path"
	"github.com/trezcool/njia/core/user"
)

type pathApi struct {
	svc      path.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerPathAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc path.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := pathApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	// all path endpoints act on the caller's own data
	pg := g.Group("/paths", jwt)
	pg.POST("/generate", api.generate)
	pg.GET("", api.query)
	pg.POST("/progress", api.recordProgress)
	pg.GET("/:id", api.retrieve)
	pg.DELETE("/:id", api.destroy)
	pg.GET("/:id/modules/:moduleID/recommendations", api.recommend)
}

// Handlers

// generate always creates a brand-new path; earlier paths are untouched.
func (api *pathApi) generate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.Generate(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "generating learning path")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *pathApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	paths, err := api.svc.QueryByOwner(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying learning paths")
	}
	if paths == nil {
		paths = []path.LearningPath{}
	}
	return ctx.JSON(http.StatusOK, paths)
}

func (api *pathApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding learning path")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pathApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "deleting learning path")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// recordProgress marks one module completed for the caller and answers with
// the badges this call newly earned; repeats are no-ops awarding nothing twice.
func (api *pathApi) recordProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data user.CompleteModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	newBadges, err := api.usrSvc.MarkModuleComplete(ctx.Request().Context(), claims.Subject, data.ModuleID)
	if err != nil {
		return errors.Wrap(err, "recording progress")
	}
	return ctx.JSON(http.StatusOK, ProgressResponse{NewBadges: newBadges})
}

func (api *pathApi) recommend(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	recs, err := api.svc.Recommend(ctx.Request().Context(), claims.Subject, ctx.Param("id"), ctx.Param("moduleID"))
	if err != nil {
		return errors.Wrap(err, "recommending resources")
	}
	if recs == nil {
		recs = []path.Recommendation{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

type ProgressResponse struct {
	NewBadges []string `json:"new_badges"`
}
