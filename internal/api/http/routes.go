package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the routes are served from.
type Deps struct {
	Service   *weather.Service
	App       *weather.App
	Suggester *weather.Suggester
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		var q searchQuery
		if err := q.bind(c); err != nil {
			return toFiberError(err)
		}

		locs, err := deps.Service.Search(c.UserContext(), q.Q, q.Limit)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(locs)
	})

	v1.Get("/locations/suggest", func(c *fiber.Ctx) error {
		var q suggestQuery
		if err := q.bind(c); err != nil {
			return toFiberError(err)
		}

		locs, err := deps.Suggester.Suggest(c.UserContext(), q.Session, q.Seq, q.Q)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"session":     q.Session,
			"seq":         q.Seq,
			"suggestions": locs,
		})
	})

	// Clients end a session when the search box closes.
	v1.Delete("/locations/suggest/:session", func(c *fiber.Ctx) error {
		session := c.Params("session")
		if err := validate.Var(session, "required,uuid"); err != nil {
			return toFiberError(err)
		}
		deps.Suggester.Forget(session)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return toFiberError(err)
		}

		var (
			report weather.Report
			err    error
		)
		if q.hasCoords() {
			report, err = deps.Service.ReportFor(c.UserContext(), q.location(), q.Provider)
		} else {
			report, err = deps.Service.Lookup(c.UserContext(), q.Q, q.Provider)
		}
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(report)
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		var q summaryQuery
		if err := q.bind(c); err != nil {
			return toFiberError(err)
		}

		horizon, err := weather.ParseHorizon(q.Horizon)
		if err != nil {
			return toFiberError(err)
		}

		report, err := deps.Service.Lookup(c.UserContext(), q.Q, q.Provider)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"location": report.Location,
			"horizon":  horizon,
			"summary":  weather.Summarize(report.Forecast, horizon, report.Location.DisplayName),
		})
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(deps.App.State())
	})

	v1.Post("/state/search", func(c *fiber.Ctx) error {
		var body searchBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		st, err := deps.App.Search(c.UserContext(), body.Query)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(st)
	})

	v1.Put("/state/tab", func(c *fiber.Ctx) error {
		var body tabBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		tab, err := weather.ParseTab(body.Tab)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(deps.App.SelectTab(tab))
	})

	v1.Get("/saved", func(c *fiber.Ctx) error {
		return c.JSON(deps.App.Saved())
	})

	v1.Post("/saved", func(c *fiber.Ctx) error {
		st, err := deps.App.SaveCurrent()
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	})

	v1.Post("/saved/:name/select", func(c *fiber.Ctx) error {
		name, err := pathName(c)
		if err != nil {
			return err
		}

		st, err := deps.App.SelectSaved(c.UserContext(), name)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(st)
	})

	v1.Delete("/saved/:name", func(c *fiber.Ctx) error {
		name, err := pathName(c)
		if err != nil {
			return err
		}

		st, err := deps.App.RemoveSaved(name)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(st)
	})
}

func pathName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil || strings.TrimSpace(name) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid location name")
	}
	return name, nil
}

// searchQuery holds query parameters for the search endpoint.
type searchQuery struct {
	Q     string `validate:"required"`
	Limit int    `validate:"omitempty,min=1,max=10"`
}

func (q *searchQuery) bind(c *fiber.Ctx) error {
	q.Q = strings.TrimSpace(c.Query("q"))
	if q.Q == "" {
		return weather.ErrInputEmpty
	}

	limit, err := optionalInt(c, "limit")
	if err != nil {
		return err
	}
	q.Limit = limit

	return validate.Struct(q)
}

// suggestQuery holds query parameters for the suggest endpoint. A missing
// session gets a fresh id which the client echoes on later keystrokes.
type suggestQuery struct {
	Q       string `validate:"required"`
	Session string `validate:"required,uuid"`
	Seq     uint64 `validate:"required,min=1"`
}

func (q *suggestQuery) bind(c *fiber.Ctx) error {
	q.Q = strings.TrimSpace(c.Query("q"))
	if q.Q == "" {
		return weather.ErrInputEmpty
	}

	q.Session = c.Query("session")
	if q.Session == "" {
		q.Session = uuid.NewString()
	}

	seq, err := strconv.ParseUint(c.Query("seq", "1"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "seq must be a positive integer")
	}
	q.Seq = seq

	return validate.Struct(q)
}

// forecastQuery identifies a location by free text or by coordinates.
type forecastQuery struct {
	Q        string
	Name     string
	Lat      *float64 `validate:"omitempty,min=-90,max=90"`
	Lon      *float64 `validate:"omitempty,min=-180,max=180"`
	Provider string   `validate:"omitempty,oneof=openmeteo nws weatherapi"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	q.Q = strings.TrimSpace(c.Query("q"))
	q.Name = strings.TrimSpace(c.Query("name"))
	q.Provider = strings.ToLower(c.Query("provider"))

	var err error
	if q.Lat, err = optionalFloat(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = optionalFloat(c, "lon"); err != nil {
		return err
	}

	if (q.Lat == nil) != (q.Lon == nil) {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon must be given together")
	}
	if q.Q == "" && !q.hasCoords() {
		return weather.ErrInputEmpty
	}

	return validate.Struct(q)
}

func (q forecastQuery) hasCoords() bool {
	return q.Lat != nil && q.Lon != nil
}

func (q forecastQuery) location() weather.Location {
	name := q.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", *q.Lat, *q.Lon)
	}
	return weather.Location{DisplayName: name, Lat: *q.Lat, Lon: *q.Lon}
}

// summaryQuery holds query parameters for the summary endpoint.
type summaryQuery struct {
	Q        string `validate:"required"`
	Horizon  string `validate:"required"`
	Provider string `validate:"omitempty,oneof=openmeteo nws weatherapi"`
}

func (q *summaryQuery) bind(c *fiber.Ctx) error {
	q.Q = strings.TrimSpace(c.Query("q"))
	if q.Q == "" {
		return weather.ErrInputEmpty
	}
	q.Horizon = c.Query("horizon", string(weather.HorizonHours))
	q.Provider = strings.ToLower(c.Query("provider"))
	return validate.Struct(q)
}

type searchBody struct {
	Query string `json:"query"`
}

type tabBody struct {
	Tab string `json:"tab"`
}

func optionalInt(c *fiber.Ctx, key string) (int, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s parameter", key))
	}
	return n, nil
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s parameter", key))
	}
	return &f, nil
}
