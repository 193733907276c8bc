// Package models defines server-side data models persisted in the database.
package models

import "time"

// Image is a published feed item.
//
// Date is set once at publish time and orders the feed. Views only grows.
// Likes holds the distinct ids of users who liked the image.
type Image struct {
	ID       string    `json:"_id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	SongName string    `json:"songName,omitempty"`
	SongLink string    `json:"songLink,omitempty"`
	Tags     []string  `json:"tags"`
	Date     time.Time `json:"date"`
	Views    int64     `json:"views"`
	Likes    []string  `json:"likes"`
}

// UploadTicket lets a client PUT an image asset straight to object storage.
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
