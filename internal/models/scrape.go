package models

import "time"

// ScrapeResult holds the extracted content for a single fetched page.
type ScrapeResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
