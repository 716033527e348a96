package model

import "time"

type Article struct {
	ID        string    `json:"id"`
	FeedID    string    `json:"feedId"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	SourceURL string    `json:"sourceUrl"`
	Date      time.Time `json:"date"`
	Read      bool      `json:"read"`
}

// StarredArticle is an Article annotated with its starred-set membership for
// list responses. The flag lives outside the article record so wholesale
// article replacement during ingestion cannot drop it.
type StarredArticle struct {
	Article
	Starred bool `json:"starred"`
}
