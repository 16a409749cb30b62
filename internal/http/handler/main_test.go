package handler

import (
	"backend-penjemputan/internal/config"
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Fixed clock 30 Agustus 2026 07:30 WIB untuk semua test handler.
var testNow = time.Date(2026, 8, 30, 7, 30, 0, 0, time.FixedZone("WIB", 7*3600))

func setupTest(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	config.DB = db

	mr := miniredis.RunT(t)
	config.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	config.Location = testNow.Location()
	config.Now = func() time.Time { return testNow }
	t.Cleanup(func() { config.Now = time.Now })

	return mock
}

// newApp pasang handler di route dengan locals JWT palsu, seperti yang
// di-set middleware.JWTAuth di production.
func newApp(method, path string, locals map[string]interface{}, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Add(method, path, func(c *fiber.Ctx) error {
		for k, v := range locals {
			c.Locals(k, v)
		}
		return c.Next()
	}, h)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}

	return resp.StatusCode, parsed
}

func dataField(t *testing.T, parsed map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := parsed["data"].(map[string]interface{})
	require.True(t, ok, "response tanpa field data: %v", parsed)
	return data
}
