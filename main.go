package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/likelyzhao/ibmds-mmbvc/convert"
	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
	"github.com/likelyzhao/ibmds-mmbvc/internal/constants"
	"github.com/likelyzhao/ibmds-mmbvc/render"
)

// Global Variables and Constants
var (

	// Logger
	log = logrus.New()

	// Environment Variables
	inputPDF       = os.Getenv("INPUT_PDF")
	resultsDir     = os.Getenv("RESULTS_DIR")
	outputDir      = envString("OUTPUT_DIR", ".")
	convertBaseURL = os.Getenv("CONVERT_BASE_URL")
	convertAPIKey  = os.Getenv("CONVERT_API_KEY")

	showPDFImage      = envBool("SHOW_PDF_IMAGE", true)
	showClusterBoxes  = envBool("SHOW_CLUSTER_BOXES", true)
	showTextCellBoxes = envBool("SHOW_TEXT_CELLS_BOXES", false)

	rasterBackend        = os.Getenv("RASTER_BACKEND")
	rasterDPI            = envInt("RASTER_DPI", constants.DefaultResolutionDPI)
	rasterTimeoutSeconds = envInt("RASTER_TIMEOUT_SECONDS", 60)
	reportColumns        = envInt("REPORT_COLUMNS", constants.DefaultReportColumns)
	forceRevisualize     = envBool("FORCE_REVISUALIZE", false)

	listenAddr = os.Getenv("LISTEN_ADDR")
	logLevel   = strings.ToLower(os.Getenv("LOG_LEVEL"))
)

// App struct to hold dependencies
type App struct {
	Converter  *convert.Client
	Rasterizer render.Rasterizer
	Database   *gorm.DB
	Options    VisualizeOptions
	PDFPath    string
	OutputDir  string
}

func main() {
	// Validate Environment Variables
	validateEnvVars()

	// Initialize logrus logger
	initLogger()

	// Initialize page rasterizer
	rasterizer, err := render.NewRasterizer(render.RasterConfig{
		Backend: rasterBackend,
		Timeout: time.Duration(rasterTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to create rasterizer: %v", err)
	}

	// Initialize Database
	database := InitializeDB()

	// Initialize App with dependencies
	app := &App{
		Rasterizer: rasterizer,
		Database:   database,
		Options: VisualizeOptions{
			ShowPDFImage:      showPDFImage,
			ShowClusterBoxes:  showClusterBoxes,
			ShowTextCellBoxes: showTextCellBoxes,
			DPI:               rasterDPI,
			Columns:           reportColumns,
		},
		PDFPath:   inputPDF,
		OutputDir: outputDir,
	}

	ctx := context.Background()

	// Convert the input PDF first when a conversion server is configured;
	// otherwise the results directory is expected to hold archives already.
	resultsPath := resultsDir
	if convertBaseURL != "" {
		app.Converter = convert.NewClient(convertBaseURL, convertAPIKey)
		if resultsPath == "" {
			resultsPath = "results"
		}
		if err := os.MkdirAll(resultsPath, 0o755); err != nil {
			log.Fatalf("Failed to create results directory: %v", err)
		}
		if _, err := app.Converter.Convert(ctx, inputPDF, resultsPath); err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}
	}

	summary, err := app.ProcessResults(ctx, resultsPath)
	if err != nil {
		log.Fatalf("Batch processing failed: %v", err)
	}

	color.Green("Visualized %d document(s)", summary.Visualized)
	if summary.Skipped > 0 {
		color.Yellow("Skipped %d already-visualized document(s)", summary.Skipped)
	}
	if summary.Failed > 0 {
		color.Red("Failed to visualize %d document(s)", summary.Failed)
	}

	if listenAddr != "" {
		startPreviewServer(app)
	}
}

func initLogger() {
	switch logLevel {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
		if logLevel != "" {
			log.Fatalf("Invalid log level: '%s'.", logLevel)
		}
	}

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	docmodel.SetLogLevel(log.GetLevel())
	render.SetLogLevel(log.GetLevel())
	convert.SetLogLevel(log.GetLevel())
}

// validateEnvVars ensures all necessary environment variables are set
func validateEnvVars() {
	if convertBaseURL == "" && resultsDir == "" {
		log.Fatal("Please set RESULTS_DIR (pre-downloaded results) or CONVERT_BASE_URL (conversion server).")
	}

	if convertBaseURL != "" && inputPDF == "" {
		log.Fatal("Please set the INPUT_PDF environment variable when using a conversion server.")
	}

	if showPDFImage && inputPDF == "" {
		log.Fatal("Please set the INPUT_PDF environment variable, or disable SHOW_PDF_IMAGE.")
	}

	if rasterBackend != "" && rasterBackend != "poppler" && rasterBackend != "fitz" {
		log.Fatal("Please set the RASTER_BACKEND environment variable to 'poppler' or 'fitz'.")
	}
}

// startPreviewServer serves the generated reports and the run history.
func startPreviewServer(app *App) {
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/reports", func(c *gin.Context) {
		records, err := GetAllRunRecords(app.Database)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	})
	router.Static("/reports/files", app.OutputDir)

	log.Infoln("Preview server started on", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
