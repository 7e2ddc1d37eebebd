package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.Claims(c)
	return claims
}

// actorFromContext builds the acting user from the access token claims. It
// writes a 401 and returns false when the request is anonymous.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.CenterID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return models.Actor{
		UserID:    claims.UserID,
		CenterID:  claims.CenterID,
		Role:      claims.Role,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}, true
}

type listParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Search    string
}

func readListParams(c *gin.Context) listParams {
	params := listParams{
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		params.PageSize = size
	}
	return params
}

func queryBool(c *gin.Context, key string) *bool {
	switch c.Query(key) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func invalidPayload(c *gin.Context, err error) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
}
