// Package main benchmarks the reposcope CLI across repositories of different sizes.
// Each scenario runs without the metrics cache and then with it, treating the
// first cached run as cold and averaging the rest as warm, and the results are
// written to CSV.
//
// Prerequisites:
// - reposcope binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Scenario    string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Scenario is one reposcope invocation to time.
type Scenario struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	Scenarios   []Scenario
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		Scenarios: []Scenario{
			{Name: "analyze", Args: []string{"analyze"}},
			{Name: "analyze-trends", Args: []string{"analyze", "--trends", "--trend-months", "12"}},
			{Name: "analyze-keyfiles", Args: []string{"analyze", "--max-key-files", "500"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("reposcope", "store", "clear", "--target", "cache")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the reposcope binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("reposcope"); err != nil {
		return fmt.Errorf("reposcope binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every scenario across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %d scenarios, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), len(config.Scenarios), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, sc := range config.Scenarios {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, sc))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache phases for a scenario
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, sc Scenario) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", sc.Name, repo)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (float64, string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, repoPath, sc, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Scenario:    sc.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a scenario numRuns times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, repoPath string, sc Scenario, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, sc.Args...)
	args = append(args, repoPath, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "reposcope", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("reposcope_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "scenario", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by scenario
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, sc := range config.Scenarios {
		fmt.Printf("%s:\n", sc.Name)
		for _, result := range results {
			if result.Scenario == sc.Name {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
