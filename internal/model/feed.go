package model

import "time"

type Feed struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	LastFetched time.Time `json:"lastFetched"`
}
