// Package report renders sweep statistics as a markdown collection report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/papercomputeco/lurker/pkg/collector"
)

const (
	filePrefix    = "collection_report_"
	fileTimestamp = "20060102_150405"
)

// Render returns the markdown collection report for a sweep.
func Render(stats *collector.Stats, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("\n# Research Collection Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Posts Collected**: %d\n", stats.TotalPosts)
	fmt.Fprintf(&b, "- **Subreddits Processed**: %d\n", len(stats.BySubreddit))
	fmt.Fprintf(&b, "- **Search Queries Used**: %d\n", len(stats.ByKeyword))
	fmt.Fprintf(&b, "- **Errors Encountered**: %d\n", len(stats.Errors))

	b.WriteString("\n## By Subreddit\n")
	for _, subreddit := range stats.Subreddits {
		fmt.Fprintf(&b, "- r/%s: %d posts\n", subreddit, stats.BySubreddit[subreddit].Posts)
	}

	b.WriteString("\n## By Search Query\n")
	for _, keyword := range stats.Keywords {
		fmt.Fprintf(&b, "- '%s': %d posts\n", keyword, stats.ByKeyword[keyword])
	}

	if len(stats.Errors) > 0 {
		b.WriteString("\n## Errors\n")
		for _, sweepErr := range stats.Errors {
			fmt.Fprintf(&b, "- %s\n", sweepErr)
		}
	}

	return b.String()
}

// Filename returns the timestamped report file name for a run generated at
// the given time.
func Filename(generatedAt time.Time) string {
	return filePrefix + generatedAt.Format(fileTimestamp) + ".md"
}

// Write renders the report into dir and returns the full path written.
func Write(stats *collector.Stats, dir string, generatedAt time.Time) (string, error) {
	path := filepath.Join(dir, Filename(generatedAt))

	if err := os.WriteFile(path, []byte(Render(stats, generatedAt)), 0o644); err != nil {
		return "", fmt.Errorf("writing collection report: %w", err)
	}

	return path, nil
}
