package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// IntQuery читает целый query-параметр. Пустое значение - def.
func IntQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// BoolQuery читает булев query-параметр ("1", "true", "yes"). Пустое значение - false.
func BoolQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
