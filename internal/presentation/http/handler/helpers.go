package handler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) enum.UserRole {
	role, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	r, _ := role.(string)
	return enum.UserRole(r)
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("user_permissions")
	if !exists {
		return nil
	}
	p, _ := permissions.([]string)
	return p
}

// IsManager checks if the user has the manager role
func IsManager(c *gin.Context) bool {
	return GetUserRole(c) == enum.UserRoleManager
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

func queryUint(c *gin.Context, key string) *uint {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	id, err := utils.ParseID(v)
	if err != nil {
		return nil
	}
	return &id
}

func queryDate(c *gin.Context, key string) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseBilling reads the raw total and deposit fields of a create request
func parseBilling(c *gin.Context, rawTotal, rawDeposit json.RawMessage) (decimal.Decimal, decimal.Decimal, bool) {
	total, err := ledger.ParseTotalJSON(rawTotal)
	if err != nil {
		response.Error(c, err)
		return decimal.Zero, decimal.Zero, false
	}
	deposit, err := ledger.ParseDepositJSON(rawDeposit)
	if err != nil {
		response.Error(c, err)
		return decimal.Zero, decimal.Zero, false
	}
	return total, deposit, true
}
