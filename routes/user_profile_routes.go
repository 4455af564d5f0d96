package routes

import (
	"pingou_server/controllers"
	"pingou_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for user profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService, store *services.ProfileStore) {
	controller := controllers.NewUserProfileController(userProfileService, store)
	qrController := controllers.NewQRCodeController(userProfileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.CreateUserProfile).Methods("POST")
	profileRouter.HandleFunc("/me", controller.GetMyProfile).Methods("GET")
	profileRouter.HandleFunc("/me", controller.UpdateUserProfile).Methods("PATCH")
	profileRouter.HandleFunc("/me", controller.DeleteUserProfile).Methods("DELETE")
	profileRouter.HandleFunc("/{userId}", controller.GetUserProfileByID).Methods("GET")
	profileRouter.HandleFunc("/{userId}/qrcode", qrController.GetUserQRCode).Methods("GET")

	r.HandleFunc("/api/logout", controller.Logout).Methods("POST")
}
