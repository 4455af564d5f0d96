package routes

import (
	"pingou_server/controllers"
	"pingou_server/services"

	"github.com/gorilla/mux"
)

// RegisterConnectionRoutes sets up routes for the connection list and the
// scan flow under /api/connections
func RegisterConnectionRoutes(r *mux.Router, connectionService *services.ConnectionService, scanService *services.ScanService) {
	controller := controllers.NewConnectionController(connectionService, scanService)

	connectionRouter := r.PathPrefix("/api/connections").Subrouter()

	connectionRouter.HandleFunc("", controller.ListConnections).Methods("GET")
	connectionRouter.HandleFunc("/scan", controller.Scan).Methods("POST")
}
