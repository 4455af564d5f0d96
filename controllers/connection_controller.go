package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pingou_server/models"
	"pingou_server/services"
	"pingou_server/utils"
)

// ConnectionController handles the connection list and the scan flow.
type ConnectionController struct {
	ConnectionService *services.ConnectionService
	ScanService       *services.ScanService
}

func NewConnectionController(connectionService *services.ConnectionService, scanService *services.ScanService) *ConnectionController {
	return &ConnectionController{ConnectionService: connectionService, ScanService: scanService}
}

// ListConnections returns the counterpart profiles for every connection
// the authenticated user appears in.
func (c *ConnectionController) ListConnections(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	connections, err := c.ConnectionService.ListConnectionsFor(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list connections for %s: %v", userID, err)
		http.Error(w, "Failed to fetch connections", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"connections": connections,
	})
}

type scanRequest struct {
	QRCodeData string `json:"qr_code_data"`
}

// Scan turns a decoded QR payload into a connection. A scan of the user's
// own code succeeds with nothing to show; a duplicate pair behaves exactly
// like a fresh success.
func (c *ConnectionController) Scan(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.QRCodeData == "" {
		http.Error(w, "QR code data is required", http.StatusBadRequest)
		return
	}

	result, err := c.ScanService.HandleScan(r.Context(), userID, req.QRCodeData)
	if errors.Is(err, models.ErrScanCooldown) {
		http.Error(w, "Scanner is cooling down", http.StatusTooManyRequests)
		return
	}
	if err != nil {
		log.Printf("Scan failed for %s: %v", userID, err)
		http.Error(w, "Failed to process scan", http.StatusInternalServerError)
		return
	}

	// A slower scan that is no longer the user's latest must not drive the
	// success screen.
	if !c.ScanService.IsCurrent(userID, result.Seq) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Scan superseded",
		})
		return
	}

	if req.QRCodeData == userID {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Scan ignored",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Connection recorded",
		"profile": result.Profile,
	})
}
