package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/marketerz/marketerz/pkg/generation"
	"github.com/marketerz/marketerz/pkg/generation/gemini"
	"github.com/marketerz/marketerz/pkg/prompts"
)

func main() {
	// Usage: go run *.go -key "your_gemini_api_key" -idea "A travel planner app" -categories "strategy,image-prompt"

	keyFlag := flag.String("key", "", "Gemini API key")
	ideaFlag := flag.String("idea", "", "Marketing idea")
	categoriesFlag := flag.String("categories", "", "Comma separated categories (default: all)")

	// Parse the command-line flags
	flag.Parse()

	if *keyFlag == "" {
		fmt.Println("API key is required. Please provide it using -key flag.")
		return
	}

	if *ideaFlag == "" {
		fmt.Println("Idea is required. Please provide it using -idea flag.")
		return
	}

	settings := prompts.DefaultSettings()
	if *categoriesFlag != "" {
		cats, err := prompts.ParseCategories(*categoriesFlag)
		if err != nil {
			fmt.Println(err)
			return
		}
		settings.SelectedCategories = cats
	}

	ctx := context.Background()
	backend, err := gemini.New(ctx, gemini.Config{APIKey: *keyFlag})
	if err != nil {
		fmt.Println(err)
		return
	}

	// The openai backend plugs in the same way
	client := generation.New(backend)
	ps, err := client.GenerateBulk(ctx, *ideaFlag, settings)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, p := range ps {
		fmt.Printf("[%s] %s\n%s\n\n", p.Category, p.Purpose, p.Prompt)
	}
}
