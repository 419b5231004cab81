package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, handler echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return Middleware()(handler)(c)
}

func counted(status int) float64 {
	return testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "", strconv.Itoa(status)))
}

func TestMiddleware_UnhandledErrorCountsAsServerError(t *testing.T) {
	before := counted(http.StatusInternalServerError)

	err := invoke(t, func(c echo.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	assert.Equal(t, before+1, counted(http.StatusInternalServerError))
}

func TestMiddleware_HTTPErrorCountsUnderItsCode(t *testing.T) {
	before := counted(http.StatusNotFound)

	err := invoke(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})
	require.Error(t, err)

	assert.Equal(t, before+1, counted(http.StatusNotFound))
}

func TestMiddleware_CommittedResponseKeepsItsStatus(t *testing.T) {
	before := counted(http.StatusCreated)

	err := invoke(t, func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	require.NoError(t, err)

	assert.Equal(t, before+1, counted(http.StatusCreated))
}
