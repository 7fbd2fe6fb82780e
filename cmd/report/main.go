// Binary report summarizes a shadow decision log: status breakdown, per-ticker
// activity, and distribution stats over fused scores and confidences.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fusionbot-go/internal/shadow"
	"fusionbot-go/internal/util"
)

func main() {
	path := flag.String("log", "data/shadow_decisions.jsonl", "shadow decision log to summarize")
	flag.Parse()

	log := util.NewLogger("info")
	entries, err := readEntries(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("read shadow log")
	}
	if len(entries) == 0 {
		log.Warn().Str("path", *path).Msg("log is empty")
		return
	}

	byStatus := make(map[shadow.Status]int)
	byTicker := make(map[string]int)
	var scores, confidences []float64
	var filledQty float64
	for _, entry := range entries {
		byStatus[entry.Status]++
		byTicker[entry.Ticker]++
		scores = append(scores, entry.Intent.Score)
		confidences = append(confidences, entry.Intent.Confidence)
		if entry.Execution != nil && entry.Execution.Fill != nil {
			filledQty += entry.Execution.Fill.Qty
		}
	}

	fmt.Printf("entries: %d (%s .. %s)\n", len(entries),
		entries[0].Timestamp.Format("2006-01-02 15:04:05"),
		entries[len(entries)-1].Timestamp.Format("2006-01-02 15:04:05"))
	for _, status := range []shadow.Status{shadow.StatusSkipped, shadow.StatusShadowHold, shadow.StatusShadowFilled} {
		fmt.Printf("  %-14s %6d (%.1f%%)\n", status, byStatus[status],
			100*float64(byStatus[status])/float64(len(entries)))
	}
	fmt.Printf("shadow-filled qty: %.0f\n\n", filledQty)

	fmt.Printf("score:      mean=%+.4f stddev=%.4f\n", stat.Mean(scores, nil), stat.StdDev(scores, nil))
	fmt.Printf("confidence: mean=%.4f stddev=%.4f\n\n", stat.Mean(confidences, nil), stat.StdDev(confidences, nil))

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		fmt.Printf("  %-12s %6d decisions\n", ticker, byTicker[ticker])
	}
}

// readEntries parses one JSON entry per line, skipping lines that fail to
// decode so a partially written tail never sinks the whole report.
func readEntries(path string) ([]shadow.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []shadow.Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry shadow.Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
