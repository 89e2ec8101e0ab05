package formutil_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/formutil"
)

type input struct {
	Name  string `json:"name"`
	Track string `json:"track"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		body    string
		wantErr bool
	}{
		{"valid", "application/json", `{"name":"Asha","track":"Data Analysis"}`, false},
		{"charset suffix", "application/json; charset=utf-8", `{"name":"Asha"}`, false},
		{"no content type", "", `{"name":"Asha"}`, false},
		{"form content type", "application/x-www-form-urlencoded", `name=Asha`, true},
		{"unknown field", "application/json", `{"name":"Asha","role":"staff"}`, true},
		{"empty", "application/json", ``, true},
		{"trailing object", "application/json", `{"name":"a"}{"name":"b"}`, true},
		{"malformed", "application/json", `{"name":`, true},
		{"too large", "application/json", `{"name":"` + strings.Repeat("x", formutil.MaxJSONBody) + `"}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			if tc.ctype != "" {
				req.Header.Set("Content-Type", tc.ctype)
			}
			var in input
			err := formutil.DecodeJSON(httptest.NewRecorder(), req, &in)
			if tc.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("got %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}
			if in.Name != "Asha" {
				t.Errorf("Name: got %q, want %q", in.Name, "Asha")
			}
		})
	}
}
