package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"priestbook/backend/internal/authctx"
)

func signedURLRequest(body string) *httptest.ResponseRecorder {
	h := &Uploads{}
	req := httptest.NewRequest("POST", "/v1/uploads/signed-url", strings.NewReader(body))
	req = req.WithContext(authctx.WithUID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	h.CreateSignedUploadURL(rec, req)
	return rec
}

func TestCreateSignedUploadURLRequiresImageContentType(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty content type", `{"kind":"profile","fileName":"a.jpg"}`},
		{"non-image content type", `{"kind":"profile","fileName":"a.pdf","contentType":"application/pdf"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := signedURLRequest(tc.body)
			if rec.Code != 400 {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateSignedUploadURLRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown kind", `{"kind":"documents","fileName":"a.jpg","contentType":"image/jpeg"}`},
		{"missing file name", `{"kind":"profile","contentType":"image/jpeg"}`},
		{"invalid json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := signedURLRequest(tc.body)
			if rec.Code != 400 {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestObjectPathForFlattensTraversal(t *testing.T) {
	got, err := objectPathFor("u1", "gallery", "../../other/secret.jpg")
	if err != nil {
		t.Fatalf("objectPathFor: %v", err)
	}
	if got != "users/u1/gallery/secret.jpg" {
		t.Errorf("objectPathFor = %q, want users/u1/gallery/secret.jpg", got)
	}
}
