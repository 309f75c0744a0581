package entity

import "time"

// Message is a single chat line delivered by the IRC host.
type Message struct {
	Network    string    `json:"network"`
	Channel    string    `json:"channel"`
	Nick       string    `json:"nick"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// MatchedURL is a link found in a message that belongs to a watched domain.
type MatchedURL struct {
	Domain string
	URL    string
}
