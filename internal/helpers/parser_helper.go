package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(v), nil
}

// ParseOptionalID reads a positive integer query parameter. An absent
// parameter yields nil.
func ParseOptionalID(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, fmt.Errorf("invalid %s", name)
	}
	id := uint(v)
	return &id, nil
}

// ParsePage reads page and limit query parameters.
func ParsePage(c *gin.Context) (page, limit int, err error) {
	page, err = StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number")
	}
	limit, err = StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit")
	}
	return page, limit, nil
}
