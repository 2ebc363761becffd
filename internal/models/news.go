package models

// Article is a single item returned by the news search API. Every field is optional.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Source      Source `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// Source names the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchResult carries the articles for one topic. Articles is always usable;
// Err explains why it is empty when the fetch failed.
type FetchResult struct {
	Articles []Article
	Err      error
}

// Summary is the text shown under an article. On failure Text holds the
// placeholder sentence and Err the classified cause.
type Summary struct {
	Text string
	Err  error
}

// Entry pairs an article with its summary.
type Entry struct {
	Article Article
	Summary Summary
}

// Section groups the entries of one topic in fetch order.
type Section struct {
	Topic   string
	Entries []Entry
}
