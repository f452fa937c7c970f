package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"priestbook/backend/internal/authctx"
	"priestbook/backend/internal/config"
	"priestbook/backend/internal/firebase"
	"priestbook/backend/internal/httpjson"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// upload kinds map to object prefixes under the caller's folder.
var uploadKinds = map[string]string{
	"profile": "profile",
	"gallery": "gallery",
}

type Uploads struct {
	cfg     config.Config
	clients *firebase.Clients
	iam     *credentials.IamCredentialsClient
}

func NewUploads(cfg config.Config, clients *firebase.Clients) *Uploads {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	return &Uploads{cfg: cfg, clients: clients, iam: iamClient}
}

type signedURLReq struct {
	Kind           string `json:"kind"`     // "profile" or "gallery"
	FileName       string `json:"fileName"` // e.g. "portrait.jpg"
	ContentType    string `json:"contentType,omitempty"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty"` // default 900
}

type signedURLResp struct {
	URL        string `json:"url"`
	ObjectPath string `json:"objectPath"`
	Method     string `json:"method"`
	ExpiresAt  int64  `json:"expiresAt"`
}

// CreateSignedUploadURL hands out a V4 signed PUT URL for an image in
// the caller's own storage folder. Clients upload directly to GCS and
// then patch the resulting path into their profile.
func (h *Uploads) CreateSignedUploadURL(w http.ResponseWriter, r *http.Request) {
	uid, ok := authctx.UID(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req signedURLReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	objectPath, err := objectPathFor(uid, req.Kind, req.FileName)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	// The signed URL pins the content type, so requiring image/* here
	// is what actually restricts the upload.
	if !strings.HasPrefix(req.ContentType, "image/") {
		httpjson.Error(w, http.StatusBadRequest, "an image/* contentType is required")
		return
	}

	url, exp, err := h.signedURL(r.Context(), objectPath, req.ContentType, req.ExpiresSeconds)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, signedURLResp{
		URL:        url,
		ObjectPath: objectPath,
		Method:     "PUT",
		ExpiresAt:  exp.Unix(),
	})
}

// objectPathFor confines uploads to users/{uid}/{kind}/{file}. The file
// name is flattened so callers cannot traverse out of their folder.
func objectPathFor(uid, kind, fileName string) (string, error) {
	prefix, ok := uploadKinds[strings.TrimSpace(kind)]
	if !ok {
		return "", fmt.Errorf("kind must be one of: profile, gallery")
	}
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("fileName is required")
	}
	return fmt.Sprintf("users/%s/%s/%s", uid, prefix, name), nil
}

func (h *Uploads) signedURL(ctx context.Context, objectPath, contentType string, expiresSeconds int64) (string, time.Time, error) {
	if h.cfg.StorageBucket == "" {
		return "", time.Time{}, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if h.cfg.SignedURLServiceAccountEmail == "" {
		return "", time.Time{}, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if h.iam == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	if expiresSeconds <= 0 || expiresSeconds > 3600 {
		expiresSeconds = 900
	}
	exp := time.Now().Add(time.Duration(expiresSeconds) * time.Second)

	// V4 signed URL for PUT (upload).
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: h.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", h.cfg.SignedURLServiceAccountEmail)
			resp, err := h.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	url, err := storage.SignedURL(h.cfg.StorageBucket, objectPath, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return url, exp, nil
}
