package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
)

// SanitizeInput strips markup from every string in a JSON request body.
// Numbers are kept as written so money amounts keep their precision.
func SanitizeInput() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if c.Request.Body == nil {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var body interface{}
		if err := dec.Decode(&body); err != nil {
			response.BadRequest(c, "Malformed JSON")
			c.Abort()
			return
		}

		clean, err := json.Marshal(sanitizeValue(policy, body))
		if err != nil {
			response.BadRequest(c, "Malformed JSON")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(clean))
		c.Request.ContentLength = int64(len(clean))

		c.Next()
	}
}

func sanitizeValue(policy *bluemonday.Policy, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		// StrictPolicy escapes entities; stored text stays plain
		return html.UnescapeString(policy.Sanitize(t))
	case map[string]interface{}:
		for k, val := range t {
			t[k] = sanitizeValue(policy, val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = sanitizeValue(policy, val)
		}
		return t
	}
	return v
}
