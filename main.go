package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/collections"
	"mtcreport/commands"
	"mtcreport/handlers"
)

func main() {
	app := pocketbase.New()

	app.RootCmd.AddCommand(commands.NewGenerateCommand())

	// Create collections, seed the grade master and import the old JSON stores
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateLegacyFiles(app, "."); err != nil {
			log.Printf("Warning: legacy file migration failed: %v", err)
		}
		return se.Next()
	})

	// Certificate API. PocketBase owns /api/health and /api/settings, so
	// everything here lives under /api/mtc.
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		mtc := se.Router.Group("/api/mtc")

		// ── Settings & saved views ───────────────────────────────
		mtc.GET("/settings", handlers.HandleGetSettings(app))
		mtc.POST("/settings", handlers.HandleSaveSettings(app))
		mtc.GET("/formats", handlers.HandleListFormats(app))
		mtc.POST("/formats", handlers.HandleSaveFormat(app))
		mtc.PUT("/formats/{name}", handlers.HandleRenameFormat(app))
		mtc.DELETE("/formats/{name}", handlers.HandleDeleteFormat(app))

		// ── Grade master ─────────────────────────────────────────
		mtc.GET("/grade-master", handlers.HandleListGrades(app))
		mtc.POST("/grade-master", handlers.HandleSaveGrade(app))
		mtc.DELETE("/grade-master/{grade}", handlers.HandleDeleteGrade(app))

		// ── Spectrometer data ────────────────────────────────────
		mtc.POST("/analyze", handlers.HandleAnalyze(app))
		mtc.POST("/prefill", handlers.HandlePrefill(app))

		// ── Certificate generation ───────────────────────────────
		mtc.POST("/generate-excel", handlers.HandleGenerateExcel(app))
		mtc.POST("/generate-html", handlers.HandleGenerateHTML(app))
		mtc.POST("/generate-pdf", handlers.HandleGeneratePDF(app))

		mtc.GET("/health", handlers.HandleHealth())
		se.Router.GET("/metrics", apis.WrapStdHandler(handlers.MetricsHandler()))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
