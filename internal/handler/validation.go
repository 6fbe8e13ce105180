package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

var registerOnce sync.Once

// RegisterValidations adds the custom binding rules to gin's validator.
func RegisterValidations() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", notBlank)
		}
	})
}

// notBlank rejects strings made only of whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// bindJSON decodes the body into req and writes an IllegalArgument response on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperr.Wrap(apperr.KindIllegalArgument, err, "%s", describeBindError(err)))
		return false
	}
	return true
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "request body is not valid JSON"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "notblank":
			msgs = append(msgs, fmt.Sprintf("%s must not be blank", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// pathUserID parses :userId and checks it names the authenticated caller.
func pathUserID(c *gin.Context) (uint, bool) {
	id, ok := parseID(c, "userId")
	if !ok {
		return 0, false
	}

	current, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperr.New(apperr.KindInsufficientAuthentication, "authentication required"))
		return 0, false
	}
	if current != id {
		response.Error(c, apperr.New(apperr.KindAccessDenied, "cannot act on behalf of user %d", id))
		return 0, false
	}
	return id, true
}

func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		response.Error(c, apperr.New(apperr.KindIllegalArgument, "%s must be a positive integer, got %q", param, raw))
		return 0, false
	}
	return uint(id), true
}
