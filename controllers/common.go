package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/middleware"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getStaffID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextStaffIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getRole(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}
