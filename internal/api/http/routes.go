// Package httpapi is the interactive surface over the pipeline: read the
// current snapshot, type search queries, pin or reset the location.
package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/flame-software/flame-weather/internal/app"
	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
	"github.com/flame-software/flame-weather/internal/search"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(fapp *fiber.App, a *app.App) {
	v1 := fapp.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		snap := a.State().Snapshot()
		if snap == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather data yet")
		}
		return c.JSON(snap)
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		st := a.State()
		return c.JSON(fiber.Map{
			"status": st.Status(),
			"mode":   st.Mode().String(),
			"lang":   a.Lang(),
		})
	})

	// Each call is one keystroke; candidates materialize asynchronously and
	// are read back from /candidates (or the response of a later keystroke).
	v1.Get("/search", func(c *fiber.Ctx) error {
		var q searchQuery
		q.Query = c.Query("q")
		q.Lang = c.Query("lang")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if q.Lang != "" {
			a.SetLang(i18n.Parse(q.Lang))
		}
		a.Search(q.Query)

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"candidates": a.State().Candidates(),
		})
	})

	v1.Get("/candidates", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"candidates": a.State().Candidates()})
	})

	v1.Post("/location/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		a.Select(c.Context(), search.Candidate{
			Name:   req.Name,
			Detail: req.Detail,
			Coordinate: geo.Coordinate{
				Latitude:  req.Latitude,
				Longitude: req.Longitude,
			},
		})

		return c.JSON(fiber.Map{
			"mode":   a.State().Mode().String(),
			"status": a.State().Status(),
		})
	})

	v1.Post("/location/reset", func(c *fiber.Ctx) error {
		a.ResetLocation(c.Context())
		return c.JSON(fiber.Map{
			"mode":   a.State().Mode().String(),
			"status": a.State().Status(),
		})
	})
}

type searchQuery struct {
	Query string `validate:"max=100"`
	Lang  string `validate:"omitempty,oneof=zh en"`
}

type selectRequest struct {
	Name      string  `json:"name" validate:"required"`
	Detail    string  `json:"detail"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}
