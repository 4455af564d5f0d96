package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pingou_server/models"
	"pingou_server/services"
	"pingou_server/utils"

	"github.com/gorilla/mux"
)

// UserProfileController handles requests related to user profiles
type UserProfileController struct {
	UserProfileService *services.UserProfileService
	Store              *services.ProfileStore
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(userProfileService *services.UserProfileService, store *services.ProfileStore) *UserProfileController {
	return &UserProfileController{UserProfileService: userProfileService, Store: store}
}

// CreateUserProfile creates the authenticated user's profile at signup
// completion.
func (c *UserProfileController) CreateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	profile.UserID = userID

	createdProfile, err := c.UserProfileService.AddUserProfile(r.Context(), profile)
	if errors.Is(err, models.ErrProfileExists) {
		http.Error(w, "Profile already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Failed to add profile: %v", err)
		http.Error(w, "Failed to add profile", http.StatusInternalServerError)
		return
	}
	c.Store.Set(*createdProfile)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile added successfully",
		"profile": createdProfile,
	})
}

// GetMyProfile returns the authenticated user's own profile, served from
// the session store after the first fetch.
func (c *UserProfileController) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := c.Store.Load(r.Context(), userID)
	if errors.Is(err, models.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(profile)
}

// GetUserProfileByID handles fetching a user profile by ID
func (c *UserProfileController) GetUserProfileByID(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile, err := c.UserProfileService.GetUserProfile(r.Context(), userID)
	if errors.Is(err, models.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(profile)
}

// UpdateUserProfile applies the owner's edits and refreshes the session
// store so later reads see the saved version.
func (c *UserProfileController) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updatedProfile, err := c.UserProfileService.UpdateUserProfile(r.Context(), userID, updates)
	if err != nil {
		log.Printf("Failed to update profile for %s: %v", userID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	c.Store.Set(*updatedProfile)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": updatedProfile,
	})
}

// DeleteUserProfile handles deleting the authenticated user's profile
func (c *UserProfileController) DeleteUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := c.UserProfileService.DeleteUserProfile(r.Context(), userID); err != nil {
		http.Error(w, "Failed to delete profile", http.StatusInternalServerError)
		return
	}
	c.Store.Invalidate(userID)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile deleted successfully",
	})
}

// Logout tears the session down: the cached profile is dropped and the
// next sign-in starts clean.
func (c *UserProfileController) Logout(w http.ResponseWriter, r *http.Request) {
	userID := utils.CurrentUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	c.Store.Invalidate(userID)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Logged out",
	})
}
