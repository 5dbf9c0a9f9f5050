package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskdesk/internal/apperr"
	"taskdesk/internal/authz"
	"taskdesk/internal/logging"
	"taskdesk/internal/middleware"
)

type errorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondError(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		logging.Logger.Errorf("[http][err] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(ae.Status(), errorResponse{Error: errorBody{
		Message: ae.Message,
		Code:    ae.Code,
		Details: ae.Details,
	}})
}

// bindError turns gin binding failures into a BadRequest with per-field details.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[lowerFirst(fe.Field())] = fe.Tag()
		}
		return apperr.BadRequest("invalid request body").WithDetails(details)
	}
	return apperr.BadRequest("invalid request body: %v", err)
}

func callerOrAbort(c *gin.Context) (authz.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(401, errorResponse{Error: errorBody{Message: "unauthenticated", Code: "UNAUTHORIZED"}})
	}
	return caller, ok
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.BadRequest("invalid %s", name))
		return 0, false
	}
	return id, true
}

func optionalInt64(c *gin.Context, key string) (*int64, error) {
	v, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(v) == "" || v == "all" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperr.BadRequest("invalid %s", key).WithDetails(map[string]string{key: "must be an integer"})
	}
	return &id, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
