// Command register is a terminal form for creating an enroll account.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/enroll/enroll/internal/client"
	"github.com/enroll/enroll/internal/tui"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	defaultURL := os.Getenv("ENROLL_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	apiURL := flag.String("api-url", defaultURL, "API base URL including the route prefix")
	flag.Parse()

	api, err := client.New(*apiURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if _, err := tea.NewProgram(tui.New(api)).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error running form:", err)
		os.Exit(1)
	}
}
