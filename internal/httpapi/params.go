package httpapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fieldError(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, fieldError(name, "this field is required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fieldError(name, "must be an integer")
	}
	return n, nil
}

// optInt: nil, если параметр не передан.
func optInt(c echo.Context, name string) (*int, error) {
	if strings.TrimSpace(c.QueryParam(name)) == "" {
		return nil, nil
	}
	n, err := queryInt(c, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optInt64(c echo.Context, name string) (*int64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fieldError(name, "must be an integer")
	}
	return &n, nil
}

func queryString(c echo.Context, name string) (string, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return "", fieldError(name, "this field is required")
	}
	return v, nil
}
