package controllers

import (
	"errors"
	"net/http"

	"pingou_server/models"
	"pingou_server/services"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeController serves the personal QR code image. The payload encoded
// in the image is the bare user id; scanning it feeds that id straight
// into the scan flow.
type QRCodeController struct {
	UserProfileService *services.UserProfileService
}

func NewQRCodeController(userProfileService *services.UserProfileService) *QRCodeController {
	return &QRCodeController{UserProfileService: userProfileService}
}

// GetUserQRCode returns a PNG QR code for the given user.
func (c *QRCodeController) GetUserQRCode(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	// Only issue codes for users that exist.
	_, err := c.UserProfileService.GetUserProfile(r.Context(), userID)
	if errors.Is(err, models.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}

	png, err := qrcode.Encode(userID, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
