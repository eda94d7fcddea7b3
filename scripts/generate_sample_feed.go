package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type feedProduct struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	SalePrice     *int64 `json:"salePrice,omitempty"`
	Category      string `json:"category,omitempty"`
	Image         string `json:"image,omitempty"`
	StockQuantity *int   `json:"stockQuantity"`
	IsActive      bool   `json:"isActive"`
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// generateSampleFeed writes a small gzipped JSON-lines product feed that the
// catalog importer can load locally via CATALOG_FEED_PATH.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []feedProduct{
		{ID: "silk-scarf-noir", Title: "Silk Scarf Noir", Price: 149900, StockQuantity: intPtr(25), IsActive: true, Category: "accessories"},
		{ID: "linen-shirt-sand", Title: "Linen Shirt Sand", Price: 89900, SalePrice: int64Ptr(79900), StockQuantity: intPtr(12), IsActive: true, Category: "apparel"},
		{ID: "amber-candle", Title: "Amber Candle", Price: 49900, StockQuantity: nil, IsActive: true, Category: "home"},
		{ID: "cashmere-throw", Title: "Cashmere Throw", Price: 299900, StockQuantity: intPtr(0), IsActive: true, Category: "home"},
		{ID: "retired-belt", Title: "Retired Belt", Price: 59900, StockQuantity: intPtr(8), IsActive: false, Category: "accessories"},
	}

	filePath := filepath.Join(dataDir, "products.jsonl.gz")
	if err := writeFeed(filePath, products); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
}

func writeFeed(path string, products []feedProduct) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gz := gzip.NewWriter(file)

	enc := json.NewEncoder(gz)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}

	return gz.Close()
}
