package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"unicode"

	"gatherly/internal/helpers"
	"gatherly/internal/middleware"
	"gatherly/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// CurrentIdentity pulls the identity the auth middleware resolved for this
// request.
func CurrentIdentity(c *gin.Context) (helpers.Identity, bool) {
	v, exists := c.Get(middleware.IdentityKey)
	if !exists {
		return helpers.Identity{}, false
	}
	identity, ok := v.(helpers.Identity)
	return identity, ok
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is unexpected: it gets logged through the error middleware and
// answered with the operation's generic failure message.
func respondError(c *gin.Context, err error, fallback string) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationResponse(ve.Fields))
		return
	}
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, models.ErrorResponse(capitalize(nf.Error())))
		return
	}
	var fb *models.ForbiddenError
	if errors.As(err, &fb) {
		c.JSON(http.StatusForbidden, models.ErrorResponse(fb.Message))
		return
	}
	var re *models.RuleError
	if errors.As(err, &re) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(re.Message))
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse(fallback))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// parseObjectID treats a malformed id the same as a missing resource.
func parseObjectID(c *gin.Context, notFoundMessage string) (primitive.ObjectID, bool) {
	raw := helpers.StringTrim(c.Param("id"))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse(notFoundMessage))
		return primitive.NilObjectID, false
	}
	return id, true
}

// parsePagination reads page/per_page with bounded defaults.
func parsePagination(c *gin.Context) (page, perPage int, ok bool) {
	page, perPage = 1, defaultPerPage

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid page parameter"))
			return 0, 0, false
		}
		page = n
	}
	if raw := firstQuery(c, "per_page", "perPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid per_page parameter"))
			return 0, 0, false
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		perPage = n
	}
	return page, perPage, true
}

// firstQuery returns the first non-empty value among the given query
// parameter spellings, normalizing snake_case/camelCase at the boundary.
func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
