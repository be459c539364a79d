package main

import (
	"github.com/glowdesk/business_service/config"
	"github.com/glowdesk/business_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
