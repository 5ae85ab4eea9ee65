package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsBounds(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)
	h := NewStatsHandler(nil, lagos)

	from, err := h.parseBound("2025-03-14", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 13, 23, 0, 0, 0, time.UTC), from.UTC())

	to, err := h.parseBound("2025-03-14", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 22, 59, 59, 999999999, time.UTC), to.UTC())

	exact, err := h.parseBound("2025-03-14T10:00:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC), exact.UTC())

	none, err := h.parseBound("", true)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = h.parseBound("14/03/2025", false)
	assert.Error(t, err)
}

func TestPaging(t *testing.T) {
	app := fiber.New()
	app.Get("/p", func(c *fiber.Ctx) error {
		limit, offset := paging(c)
		return c.JSON(fiber.Map{"limit": limit, "offset": offset})
	})

	cases := map[string][2]int{
		"/p":                        {defaultPageSize, 0},
		"/p?page=3&page_size=10":    {10, 20},
		"/p?page_size=1000":         {maxPageSize, 0},
		"/p?page=-2&page_size=zero": {defaultPageSize, 0},
	}
	for url, want := range cases {
		t.Run(url, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, url, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			var got struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, want[0], got.Limit)
			assert.Equal(t, want[1], got.Offset)
		})
	}
}

func TestPathInt(t *testing.T) {
	app := fiber.New()
	app.Get("/berap/:year", func(c *fiber.Ctx) error {
		year, err := pathInt(c, "year")
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"year": year})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/berap/2024", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/berap/latest", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
