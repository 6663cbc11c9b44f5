package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/urlrag"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	rag, err := urlrag.NewRag(model.DefaultConfig(), dbConfig)
	if err != nil {
		log.Fatalf("Failed to create rag: %v", err)
	}
	defer rag.Close()

	ctx := context.Background()
	urls := []string{
		"https://www.cnbc.com/2024/12/21/how-the-federal-reserves-rate-policy-affects-mortgages.html",
		"https://www.cnbc.com/2024/12/20/why-mortgage-rates-jumped-despite-fed-interest-rate-cut.html",
	}

	numChunks, err := rag.ProcessURLs(ctx, urls, func(stage model.IngestStage) {
		fmt.Printf("%s...\n", stage)
	})
	if err != nil {
		log.Fatalf("Failed to process urls: %v", err)
	}
	fmt.Printf("Inserted %d chunks\n", numChunks)

	chunks, err := rag.SimilaritySearch(ctx, "30 year mortage rate", 2)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results:\n", len(chunks))
	for i, chunk := range chunks {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Source: %s\n", chunk.Source)
		fmt.Printf("Content: %s\n", chunk.Content)
	}

	result, err := rag.GenerateAnswer(ctx, "Tell me what was the 30 year fixed mortagate rate along with the date?")
	if err != nil {
		log.Fatalf("Failed to generate answer: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", result.Answer)
	fmt.Printf("Sources: %s\n", result.Sources)
}
