// Package binding decodes loosely typed JSON request bodies.
package binding

import (
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"

	"product_api/internal/apperror"

	"github.com/gin-gonic/gin"
)

// JSONObject decodes the body into a generic object. An empty body is an
// empty object; malformed JSON is a 400 for the error handler.
func JSONObject(c *gin.Context) (map[string]any, error) {
	raw := map[string]any{}
	if c.Request.Body == nil {
		return raw, nil
	}
	if err := c.ShouldBindJSON(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, apperror.BadRequest(err)
	}
	if raw == nil {
		// body was the literal null
		raw = map[string]any{}
	}
	return raw, nil
}

// decimalFloat is plain decimal or exponent notation. Hex and underscore
// forms do not match.
var decimalFloat = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)

// String coerces scalar JSON values to text; anything else is "".
func String(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Float accepts JSON numbers and decimal numeric strings. ok is false for
// anything that is not a finite number.
func Float(v any) (f float64, ok bool) {
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		if !decimalFloat.MatchString(t) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
