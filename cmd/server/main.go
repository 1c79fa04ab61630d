package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"zonerouter/internal/adapters/loader"
	"zonerouter/internal/adapters/matrix"
	"zonerouter/internal/adapters/runstore"
	"zonerouter/internal/adapters/solver"
	"zonerouter/internal/api"
	"zonerouter/internal/orchestrator"
	"zonerouter/internal/platform/db"
)

// main is the application composition root. It wires concrete adapters
// (CSV dataset loader, HTTP matrix provider with a SQLite cache, the VRP/TSP
// solver, the filesystem run store) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dataRoot := getEnv("DATA_ROOT", "data")
	customerFile := getEnv("CUSTOMER_FILE", filepath.Join(dataRoot, "customers.csv"))
	depotFile := getEnv("DEPOT_FILE", filepath.Join(dataRoot, "depots.csv"))
	dbPath := getEnv("DB_PATH", filepath.Join(dataRoot, "cache.db"))
	port := getEnv("PORT", "8080")

	datasetLoader, err := loader.NewCSVLoader(customerFile, depotFile)
	if err != nil {
		log.Fatal(err)
	}

	cacheDB, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cacheDB.Close()

	if err := matrix.InitSchema(cacheDB); err != nil {
		log.Fatal(err)
	}

	matrixCfg := matrix.Config{
		BaseURL:        os.Getenv("MATRIX_BASE_URL"),
		Profile:        getEnv("MATRIX_PROFILE", "driving"),
		MaxRetries:     getEnvInt("MATRIX_MAX_RETRIES", 4),
		BackoffSeconds: getEnvFloat("MATRIX_BACKOFF_SECONDS", 0.2),
	}
	if matrixCfg.BaseURL == "" {
		log.Println("MATRIX_BASE_URL not set; using haversine fallback provider")
	}

	matrixCache := matrix.NewSQLiteCache(cacheDB, matrixCfg.Profile)
	matrixProvider := matrix.NewHTTPMatrixProvider(matrixCfg, matrixCache)

	solverTimeLimit := getEnvInt("SOLVER_TIME_LIMIT_SECONDS", 10)
	routingSolver := solver.NewSolver(solverTimeLimit)

	outputsRoot := filepath.Join(dataRoot, "outputs")
	runStore, err := runstore.NewFilesystemRunStore(outputsRoot)
	if err != nil {
		log.Fatal(err)
	}

	workingDays := splitEnvList("WORKING_DAYS", []string{"SUN", "MON", "TUE", "WED", "THU", "FRI"})
	balanceTolerance := getEnvFloat("BALANCE_TOLERANCE_DEFAULT", 0.20)

	orch := orchestrator.New(datasetLoader, matrixProvider, routingSolver, runStore, orchestrator.Config{
		WorkingDays:             workingDays,
		SolverTimeLimitSeconds:  solverTimeLimit,
		BalanceToleranceDefault: balanceTolerance,
	})

	allowedOrigins := splitEnvList("ALLOWED_ORIGINS", []string{"*"})
	router := api.NewRouter(orch, allowedOrigins)

	// Timeouts are tuned for cold-cache route planning (external matrix
	// service latency, bounded solver search time).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
