package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zhukovvlad/listings-go/cmd/internal/config"
	"github.com/zhukovvlad/listings-go/cmd/internal/services"
	"github.com/zhukovvlad/listings-go/cmd/internal/storage"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

type Server struct {
	router     *gin.Engine
	logger     *logging.Logger
	processing *services.ListingProcessingService
	listingLog *storage.ListingLog
	config     *config.Config
}

// NewServer собирает роутер и все middleware. listingLog может быть nil:
// в этом случае результаты не журналируются.
func NewServer(
	logger *logging.Logger,
	processing *services.ListingProcessingService,
	listingLog *storage.ListingLog,
	cfg *config.Config,
) *Server {
	server := &Server{
		logger:     logger,
		processing: processing,
		listingLog: listingLog,
		config:     cfg,
	}
	router := gin.Default()

	// Настройка CORS
	corsConfig := cors.DefaultConfig()
	if cfg.IsDebug != nil && *cfg.IsDebug {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	} else {
		// Сервис server-to-server, браузерных клиентов в production нет.
		corsConfig.AllowOrigins = []string{}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.Use(RequestIDMiddleware())

	router.GET("/", server.HomeHandler)
	router.GET("/healthz", server.HealthHandler)

	v1 := router.Group("/api/v1")
	if cfg.ServiceAuth.Enabled {
		v1.Use(ServiceBearerAuthMiddleware("extraction-worker", cfg.ServiceAuth.APIKey))
	}
	if cfg.RateLimit.Enabled {
		v1.Use(ServiceRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	{
		// Обработка выгрузки извлечения: JSON-ответ либо xlsx-вложение.
		v1.POST("/process", server.ProcessHandler)
		v1.POST("/process/xlsx", server.ProcessXLSXHandler)
	}

	server.router = router
	return server
}

func (s *Server) Start(address string) error {
	return s.router.Run(address)
}

// Router отдает собранный gin.Engine для httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
