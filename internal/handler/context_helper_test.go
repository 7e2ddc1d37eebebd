package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
)

func TestReadListParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := newGinContext(http.MethodGet, "/students?page=3&limit=50&sort=full_name&order=desc&search=%20rafi%20", nil)
	params := readListParams(c)
	assert.Equal(t, listParams{Page: 3, PageSize: 50, SortBy: "full_name", SortOrder: "desc", Search: "rafi"}, params)

	c, _ = newGinContext(http.MethodGet, "/students?page=x", nil)
	params = readListParams(c)
	assert.Equal(t, 0, params.Page)
	assert.Equal(t, 20, params.PageSize)
}

func TestQueryBool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := newGinContext(http.MethodGet, "/teachers?active=false&other=yes", nil)
	value := queryBool(c, "active")
	require.NotNil(t, value)
	assert.False(t, *value)
	assert.Nil(t, queryBool(c, "other"))
	assert.Nil(t, queryBool(c, "missing"))
}

func TestActorFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newGinContext(http.MethodGet, "/rooms", nil)
	c.Request.Header.Set("User-Agent", "front-desk")
	c.Set(middleware.ContextUserKey, adminClaims)

	actor, ok := actorFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "c1", actor.CenterID)
	assert.Equal(t, "admin", actor.UserID)
	assert.Equal(t, "front-desk", actor.UserAgent)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/rooms", nil)
	_, ok = actorFromContext(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
