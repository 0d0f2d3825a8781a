package entity

// NewsItem is a market news article with its sentiment classification.
type NewsItem struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"published_at"`
	Content     string  `json:"content"`
	Sentiment   string  `json:"sentiment"`
	Confidence  float64 `json:"confidence"`
}
