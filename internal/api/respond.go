package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
	headerTotalCount  = "X-Total-Count"
)

// respond writes v as JSON with a content hash ETag. Pipelines are
// deterministic, so an unchanged store yields an unchanged tag.
func respond(c echo.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set(headerETag, etag)

	if match := c.Request().Header.Get(headerIfNoneMatch); match != "" {
		for _, candidate := range strings.Split(match, ",") {
			if candidate = strings.TrimSpace(candidate); candidate == etag || candidate == "*" {
				return c.NoContent(http.StatusNotModified)
			}
		}
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

// JSONSerializer implements echo.JSONSerializer with goccy/go-json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
