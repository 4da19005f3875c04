package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	orderedNames, scenarioMap, err := listScenarios(client, cfg.APIBaseURL)
	if err != nil || len(orderedNames) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list scenarios: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Available Scenarios:")
	for i := range orderedNames {
		fmt.Printf("  %d - %s (%s)\n", i+1, orderedNames[i], scenarioMap[orderedNames[i]])
	}
	fmt.Print("\nSelect a scenario by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(orderedNames) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	scenarioName := orderedNames[choice-1]
	scenarioFile := scenarioMap[scenarioName]

	sc, err := getScenario(client, cfg.APIBaseURL, scenarioFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scenario: %v\n", err)
		os.Exit(1)
	}

	players, err := readPlayerNames(os.Stdin, sc.PlayerCount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read player names: %v\n", err)
		os.Exit(1)
	}

	session, err := createSession(client, cfg.APIBaseURL, scenarioFile, players)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, session, scenarioName),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// readPlayerNames collects one name per seat. Blank lines are re-prompted,
// duplicate names are rejected so seats stay addressable by name.
func readPlayerNames(in *os.File, count int) ([]string, error) {
	fmt.Printf("\nThis scenario seats %d players. Enter their names in seating order.\n", count)

	scanner := bufio.NewScanner(in)
	names := make([]string, 0, count)
	seen := make(map[string]bool, count)

	for len(names) < count {
		fmt.Printf("Player %d: ", len(names)+1)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("input ended after %d of %d names", len(names), count)
		}
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			fmt.Printf("%q is already seated, pick another name.\n", name)
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
