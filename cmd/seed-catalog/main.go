package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/gold-catalog/internal/platform/firestore"
	"github.com/weiwei-tsao/gold-catalog/internal/repository"
	"github.com/weiwei-tsao/gold-catalog/internal/web"
)

func main() {
	file := flag.String("file", "", "catalog JSON to upload (default: built-in catalog)")
	dryRun := flag.Bool("dry-run", false, "validate the catalog without writing")
	flag.Parse()

	ctx := context.Background()

	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	body := web.CatalogBytes()
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read catalog: %v", err)
		}
		body = data
	}

	products, err := catalog.DecodeCatalog(body)
	if err != nil {
		log.Fatalf("Invalid catalog: %v", err)
	}
	fmt.Printf("Catalog has %d products\n", len(products))
	if *dryRun {
		fmt.Println("Dry run: nothing written")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, credsSource, err := firestoreclient.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to Firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)

	fmt.Println("Seeding products collection...")
	fmt.Println("========================================")

	written, deleted, err := repository.NewCatalogRepository(client).ReplaceAll(ctx, products)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Printf("Wrote %d products, removed %d stale documents\n", written, deleted)
	fmt.Println("========================================")
	fmt.Println("Seed completed successfully!")
}
