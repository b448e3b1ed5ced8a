package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct{}

// GenerateSignature generates a signature for Cloudinary uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Uploader wraps the cloudinary client for asset cleanup. Photos removed from
// a draft or left behind by an expired session must also be released in
// object storage, otherwise orphaned uploads accumulate.
type Uploader struct {
	cld *cloudinary.Cloudinary
}

// NewUploader builds an uploader from the CLOUDINARY_URL env var. A missing
// or bad URL leaves destroys as no-ops so local setups work without an account.
func NewUploader() *Uploader {
	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		zap.S().Warnw("cloudinary not configured, photo cleanup disabled", "error", err)
		return &Uploader{}
	}
	return &Uploader{cld: cld}
}

// Destroy releases one uploaded asset by its public ID
func (u *Uploader) Destroy(ctx context.Context, publicID string) {
	if u.cld == nil || publicID == "" {
		return
	}
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		zap.S().Warnw("failed to destroy cloudinary asset", "publicID", publicID, "error", err)
	}
}
