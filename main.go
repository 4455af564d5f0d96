package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"pingou_server/realtime"
	"pingou_server/routes"
	"pingou_server/services"
	"pingou_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Event broker feeding realtime sync sessions
	broker := realtime.NewBroker()

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	profileStore := services.NewProfileStore(userProfileService)
	connectionService := &services.ConnectionService{Dynamo: dynamoService, Events: broker}
	scanService := services.NewScanService(connectionService)

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Pingou")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService, profileStore)
	routes.RegisterConnectionRoutes(r, connectionService, scanService)

	// Socket server pushing connection-list updates to clients
	socketServer := socket.NewServer(broker, connectionService)
	go func() {
		if err := socketServer.IO.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Shutdown()
	r.Handle("/socket.io/", socketServer.IO)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
