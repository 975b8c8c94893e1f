package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifeTrackAPI/handlers"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/notification"
	"lifeTrackAPI/middleware"
	"lifeTrackAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	store            *docstore.PostgresStore
	statsService     *services.StatsService
	habitService     *services.HabitService
	challengeService *services.ChallengeService
	rankingService   *services.RankingService
	checkInService   *services.CheckInService
	financeService   *services.FinanceService
	patternService   *services.PatternService
	alertDispatcher  *services.AlertDispatcher
	fcmService       *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	store = docstore.NewPostgresStore(dbPool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	statsService = services.NewStatsService(store)
	habitService = services.NewHabitService(store, statsService)
	challengeService = services.NewChallengeService(store, statsService)
	habitService.SetChallengeService(challengeService)
	rankingService = services.NewRankingService(store, statsService)
	checkInService = services.NewCheckInService(store, statsService)
	financeService = services.NewFinanceService(store)
	alertDispatcher = services.NewAlertDispatcher(store)
	patternService = services.NewPatternService(store, habitService, financeService, alertDispatcher)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		alertDispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	habitHandler := handlers.NewHabitHandler(habitService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	statsHandler := handlers.NewStatsHandler(statsService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	financeHandler := handlers.NewFinanceHandler(financeService)
	patternHandler := handlers.NewPatternHandler(patternService)
	notificationHandler := handlers.NewNotificationHandler(alertDispatcher)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "lifeTrack-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabit).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/toggle", habitHandler.ToggleCompletion).Methods("POST")

	protected.HandleFunc("/challenges", challengeHandler.StartChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}/complete-day", challengeHandler.MarkDayComplete).Methods("POST")
	protected.HandleFunc("/challenges/{id}/difficulty", challengeHandler.RecordDifficulty).Methods("POST")
	protected.HandleFunc("/challenges/{id}/rewards/{rewardId}/unlock", challengeHandler.UnlockReward).Methods("POST")
	protected.HandleFunc("/challenges/{id}/tips/{tipId}/shown", challengeHandler.MarkTipShown).Methods("PUT")
	protected.HandleFunc("/challenges/{id}/extend", challengeHandler.ExtendChallenge).Methods("POST")

	protected.HandleFunc("/workout-challenges", rankingHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/workout-challenges/{id}", rankingHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/workout-challenges/{id}/join", rankingHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/workout-challenges/{id}/workouts", rankingHandler.RecordWorkout).Methods("POST")
	protected.HandleFunc("/workout-challenges/{id}/leaderboard", rankingHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/stats", statsHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/badges", statsHandler.ListBadges).Methods("GET")

	protected.HandleFunc("/check-ins", checkInHandler.UpsertCheckIn).Methods("PUT")
	protected.HandleFunc("/check-ins", checkInHandler.ListCheckIns).Methods("GET")
	protected.HandleFunc("/check-ins/{date}", checkInHandler.GetCheckIn).Methods("GET")

	protected.HandleFunc("/finance", financeHandler.CreateEntry).Methods("POST")
	protected.HandleFunc("/finance", financeHandler.ListEntries).Methods("GET")
	protected.HandleFunc("/finance/{id}", financeHandler.DeleteEntry).Methods("DELETE")

	protected.HandleFunc("/patterns", patternHandler.DetectPatterns).Methods("GET")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	alertDispatcher.Stop()

	log.Println("Server shutdown complete")
}
