package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/gold-catalog/internal/business/catalog"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/gold-catalog/internal/platform/firestore"
	"github.com/weiwei-tsao/gold-catalog/internal/repository"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, credsSource, err := firestoreclient.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	if err := firestoreclient.Ping(ctx, client); err != nil {
		log.Fatalf("Failed to reach Firestore: %v", err)
	}
	fmt.Printf("Project: %s (%s credentials)\n\n", cfg.FirebaseProjectID, credsSource)

	// Read through the same path the server uses so validation failures show up here.
	products, err := catalog.NewRepositoryCatalogSource(repository.NewCatalogRepository(client)).FetchCatalog(ctx)
	if err != nil {
		log.Fatalf("Catalog is not servable: %v", err)
	}

	jsonData, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal: %v", err)
	}

	fmt.Printf("Collection %q holds %d products in position order:\n", repository.ProductsCollection, len(products))
	fmt.Println(string(jsonData))
}
