package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ANIKETSHETTY47/meter-compare/internal/auth"
	"github.com/ANIKETSHETTY47/meter-compare/internal/compare"
	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
	"github.com/ANIKETSHETTY47/meter-compare/internal/service"
)

// Options carries what routes need beyond the services.
type Options struct {
	JWTSecret []byte
	Metrics   nethttp.Handler
}

func Register(app *fiber.App, svcs *service.Services, opts Options) {
	app.Use(requestID(), accessLog())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics))
	}

	g := app.Group("/api")
	g.Get("/units", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.ListUnits(c.UserContext())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})
	g.Get("/meters", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.ListMeters(c.UserContext())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})
	g.Get("/groups", func(c *fiber.Ctx) error {
		items, err := svcs.Repos.ListGroups(c.UserContext())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})
	g.Get("/conversions", func(c *fiber.Ctx) error {
		items, err := svcs.Conversions.List(c.UserContext())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(items)
	})
	g.Get("/conversions/resolve", func(c *fiber.Ctx) error {
		src, err := queryID(c, "source")
		if err != nil {
			return notAcceptable(c, err)
		}
		dst, err := queryID(c, "destination")
		if err != nil {
			return notAcceptable(c, err)
		}
		tr, err := svcs.Conversions.Resolve(c.UserContext(), src, dst)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tr)
	})
	g.Post("/conversions", auth.Require(opts.JWTSecret, auth.RoleAdmin, "create conversion"), func(c *fiber.Ctx) error {
		var conv domain.Conversion
		if err := c.BodyParser(&conv); err != nil {
			return notAcceptable(c, err)
		}
		if err := svcs.Conversions.Add(c.UserContext(), conv); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(conv)
	})

	g.Get("/compareReadings/meters/:ids", compareHandler(svcs, domain.KindMeter))
	g.Get("/compareReadings/groups/:ids", compareHandler(svcs, domain.KindGroup))
}

// compareHandler answers {"<id>": [current, shifted], ...} for every id in
// the comma separated :ids parameter.
func compareHandler(svcs *service.Services, kind domain.EntityKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := parseIDs(c.Params("ids"))
		if err != nil {
			return notAcceptable(c, err)
		}
		start, err := parseTimestamp(c.Query("curr_start"))
		if err != nil {
			return notAcceptable(c, fmt.Errorf("curr_start: %w", err))
		}
		end, err := parseTimestamp(c.Query("curr_end"))
		if err != nil {
			return notAcceptable(c, fmt.Errorf("curr_end: %w", err))
		}
		shift, err := compare.ParseShift(c.Query("shift"))
		if err != nil {
			return notAcceptable(c, err)
		}
		unitID, err := queryID(c, "graphicUnitId")
		if err != nil {
			return notAcceptable(c, err)
		}

		out := make(map[string][2]float64, len(ids))
		for _, id := range ids {
			res, err := svcs.Compare.Compare(c.UserContext(), compare.Request{
				Target:       compare.Target{ID: id, Kind: kind},
				CurrentStart: start,
				CurrentEnd:   end,
				Shift:        shift,
				UnitID:       unitID,
			})
			if err != nil {
				return fail(c, err)
			}
			out[strconv.FormatInt(id, 10)] = res.Pair()
		}
		return c.JSON(out)
	}
}

var timestampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, errors.New("missing ids")
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryID(c *fiber.Ctx, name string) (int64, error) {
	v := c.Query(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: invalid id %q", name, v)
	}
	return id, nil
}

func notAcceptable(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusNotAcceptable).JSON(fiber.Map{"error": err.Error()})
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow), errors.Is(err, domain.ErrInvalidArgument):
		return fiber.StatusNotAcceptable
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNoConversionPath),
		errors.Is(err, domain.ErrIncompatibleUnits),
		errors.Is(err, domain.ErrUnsupportedRepresent),
		errors.Is(err, domain.ErrCyclicGroup):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
