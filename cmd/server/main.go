package main

import (
	"os"

	"taskdesk/internal/app"
)

// @title       Taskdesk API
// @version     1.0
// @description Task assignment, hand-off and aggregation endpoints.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	os.Exit(app.Run())
}
