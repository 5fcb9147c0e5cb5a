package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core/lab"
)

type labApi struct {
	svc      *lab.Service
	validate *validator.Validate
}

// Handlers

func (api labApi) listExercises(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exercises, err := api.svc.ListByCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing exercises")
	}
	if exercises == nil {
		exercises = []lab.Exercise{}
	}
	return ctx.JSON(http.StatusOK, exercises)
}

func (api labApi) createExercise(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data lab.NewExercise
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExercise")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ex, err := api.svc.CreateExercise(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "creating exercise")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api labApi) generateQR(ctx echo.Context) error {
	exerciseID, studentID, err := gradePairParams(ctx)
	if err != nil {
		return err
	}

	dataURI, err := api.svc.GenerateQR(ctx.Request().Context(), exerciseID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, QRResponse{Image: dataURI})
}

func (api labApi) redeem(ctx echo.Context) error {
	exerciseID, studentID, err := gradePairParams(ctx)
	if err != nil {
		return err
	}

	rec, err := api.svc.Redeem(ctx.Request().Context(), exerciseID, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api labApi) setPoints(ctx echo.Context) error {
	exerciseID, studentID, err := gradePairParams(ctx)
	if err != nil {
		return err
	}

	var data lab.SetPoints
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetPoints")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.SetPoints(ctx.Request().Context(), exerciseID, studentID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api labApi) listPoints(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	recs, err := api.svc.ListPointsByExercise(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []lab.StudentPoints{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func gradePairParams(ctx echo.Context) (exerciseID, studentID int, err error) {
	if exerciseID, err = intParam(ctx, "exercise_id"); err != nil {
		return 0, 0, err
	}
	if studentID, err = intParam(ctx, "student_id"); err != nil {
		return 0, 0, err
	}
	return exerciseID, studentID, nil
}

type QRResponse struct {
	Image string `json:"image"`
}
