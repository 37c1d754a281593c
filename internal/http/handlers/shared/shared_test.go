package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devfolio-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type sampleRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	DisplayName string `json:"display_name" binding:"omitempty,max=50,displayname"`
}

func runBind(t *testing.T, body string, lang string) (int, response.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if lang != "" {
		c.Request.Header.Set("Accept-Language", lang)
	}
	var req sampleRequest
	if BindJSON(c, &req) {
		response.Success(c, nil)
	}
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return w.Code, resp
}

func TestBindJSONAggregatesValidationErrors(t *testing.T) {
	status, resp := runBind(t, `{"email":"nope","code":"12a","display_name":"<script>"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", status)
	}
	want := "validation failed: email must be a valid email address, code must be exactly 6 characters, display_name contains characters that are not allowed, avoid symbols like < > / \\ & % $"
	if resp.Message != want {
		t.Fatalf("message want %q got %q", want, resp.Message)
	}
}

func TestBindJSONLocalizedMessage(t *testing.T) {
	_, resp := runBind(t, `{}`, "es-ES")
	if !strings.HasPrefix(resp.Message, "errores de validación: ") {
		t.Fatalf("spanish message expected, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "email") || !strings.Contains(resp.Message, "code") {
		t.Fatalf("every field should be listed, got %q", resp.Message)
	}
}

func TestBindJSONAcceptsAccentedDisplayName(t *testing.T) {
	status, resp := runBind(t, `{"email":"ana@example.com","code":"012345","display_name":"José Ñandú 2"}`, "")
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("valid request rejected: %d %+v", status, resp)
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	status, resp := runBind(t, `{"email":`, "")
	if status != http.StatusBadRequest || resp.Message != "invalid request" {
		t.Fatalf("malformed body want 400 invalid request, got %d %q", status, resp.Message)
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 20},
		{raw: "abc", want: 20},
		{raw: "-1", want: 20},
		{raw: "5", want: 5},
		{raw: "500", want: 100},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.raw, 20, 100); got != tt.want {
			t.Fatalf("limit %q want %d got %d", tt.raw, tt.want, got)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("NewPassword"); got != "new_password" {
		t.Fatalf("want new_password got %s", got)
	}
}
