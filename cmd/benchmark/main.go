package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/powera/wiki-scripts/internal/engine"
)

// syntheticPage builds an article with the constructs real pages mix:
// an infobox, references, templates inside links, tables and headings.
func syntheticPage(sections int) string {
	var sb strings.Builder
	sb.WriteString("{{Short description|A synthetic article}}\n")
	sb.WriteString("{{Infobox settlement|name=Benchmark|population=1234|area_km2=56.7}}\n")
	sb.WriteString("'''Benchmark''' is a [[test page|synthetic page]] used to measure the [[parser]].")
	sb.WriteString("<ref name=\"intro\">{{cite web|url=https://example.org|title=Intro}}</ref>\n\n")
	for i := 0; i < sections; i++ {
		fmt.Fprintf(&sb, "== Section %d ==\n", i)
		fmt.Fprintf(&sb, "Paragraph %d mentions [[Topic %d]], [[Other topic#Part|another]] and ''italic'' text.", i, i)
		fmt.Fprintf(&sb, "{{cn|date=May 2024}} It is {{convert|%d|km|mi}} long.<ref>Source %d</ref>\n\n", i+1, i)
		sb.WriteString("{| class=\"wikitable\"\n|-\n! Key !! Value\n|-\n| a || [[b]]\n|}\n\n")
		sb.WriteString("<!-- editor note -->\n")
	}
	sb.WriteString("== References ==\n{{reflist}}\n[[Category:Benchmarks]]\n")
	return sb.String()
}

func newEngine(cacheEntries int) *engine.Engine {
	config := engine.DefaultConfig()
	config.CacheEntries = cacheEntries
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.New(engine.WithConfig(config), engine.WithLogger(logger))
}

// measureCachePerformance compares a cold render with a cached one
func measureCachePerformance(page string) {
	eng := newEngine(engine.DefaultConfig().CacheEntries)
	defer eng.Close()
	ctx := context.Background()

	fmt.Println("=== Cache Performance Test ===")
	fmt.Println()
	fmt.Println("1. Render Cache Test (text format):")

	args := engine.RenderArgs{Text: page, Format: "text"}
	start := time.Now()
	if _, err := eng.RenderMCP(ctx, args); err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	firstCall := time.Since(start)
	fmt.Printf("   First call (parse):    %v\n", firstCall)

	start = time.Now()
	res, _ := eng.RenderMCP(ctx, args)
	secondCall := time.Since(start)
	fmt.Printf("   Second call (cached):  %v (cached=%v)\n", secondCall, res.Cached)
	fmt.Printf("   Speedup: %.0fx faster\n", float64(firstCall)/float64(max(secondCall, time.Nanosecond)))
	fmt.Println()
}

// measureThroughput renders the page repeatedly in each format with caching off
func measureThroughput(page string, iterations int) {
	eng := newEngine(0)
	defer eng.Close()
	ctx := context.Background()

	fmt.Println("=== Render Throughput (cache disabled) ===")
	fmt.Println()
	fmt.Printf("2. %d iterations over a %d byte page:\n", iterations, len(page))

	for _, format := range engine.Formats {
		args := engine.RenderArgs{Text: page, Format: string(format)}
		start := time.Now()
		var failed error
		for i := 0; i < iterations && failed == nil; i++ {
			_, failed = eng.RenderMCP(ctx, args)
		}
		elapsed := time.Since(start)
		if failed != nil {
			fmt.Printf("   %-10s: error: %v\n", format, failed)
			continue
		}
		mbps := float64(len(page)*iterations) / elapsed.Seconds() / (1 << 20)
		fmt.Printf("   %-10s: %v per page, %.1f MiB/s\n", format, elapsed/time.Duration(iterations), mbps)
	}
	fmt.Println()
}

// measureConcurrency compares sequential edits with the same work spread over all CPUs
func measureConcurrency(page string, iterations int) {
	eng := newEngine(0)
	defer eng.Close()
	ctx := context.Background()
	args := engine.SetParamArgs{Text: page, Kind: "Infobox settlement", Key: "population", Value: "4321"}

	fmt.Println("=== Sequential vs Parallel Edits ===")
	fmt.Println()

	fmt.Println("3. Sequential SetParam:")
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := eng.SetParamMCP(ctx, args); err != nil {
			fmt.Printf("   Error: %v\n", err)
			return
		}
	}
	sequentialTime := time.Since(start)
	fmt.Printf("   %d edits: %v\n", iterations, sequentialTime)
	fmt.Println()

	workers := runtime.GOMAXPROCS(0)
	fmt.Printf("4. Parallel SetParam (%d workers):\n", workers)
	jobs := make(chan struct{})
	var wg sync.WaitGroup
	start = time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				_, _ = eng.SetParamMCP(ctx, args)
			}
		}()
	}
	for i := 0; i < iterations; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	parallelTime := time.Since(start)
	fmt.Printf("   %d edits: %v\n", iterations, parallelTime)
	fmt.Printf("   Parallel speedup: %.1fx faster\n", float64(sequentialTime)/float64(parallelTime))
	fmt.Println()
}

func main() {
	sections := flag.Int("sections", 50, "Sections in the synthetic page")
	iterations := flag.Int("n", 200, "Iterations per measurement")
	flag.Parse()

	fmt.Println("Wikitext MCP Server - Performance Measurements")
	fmt.Println("==============================================")
	fmt.Println()

	page := syntheticPage(*sections)
	measureCachePerformance(page)
	measureThroughput(page, *iterations)
	measureConcurrency(page, *iterations)

	fmt.Println("=== Summary ===")
	fmt.Println()
	fmt.Println("Key properties:")
	fmt.Println("• Caching: Repeated renders of the same page skip parsing entirely")
	fmt.Println("• Deduplication: Concurrent identical renders share one parse")
	fmt.Println("• Isolation: Every call parses its own tree, so edits scale across CPUs")
}
