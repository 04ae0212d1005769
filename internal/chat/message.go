// Package chat provides the transcript parser and the Message model it produces.
package chat

import "time"

// Message is a single structured, timestamped, attributed unit of chat text,
// possibly assembled from several physical lines of the export file.
// Date, Time, Hour and Weekday are denormalized from Timestamp so aggregation
// passes can group without recomputing them.
type Message struct {
	Timestamp time.Time `json:"datetime"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Hour      int       `json:"hour"`
	Weekday   int       `json:"weekday"` // 0 = Monday ... 6 = Sunday
	Author    string    `json:"author"`
	Text      string    `json:"text"`
}

// NewMessage builds a Message with all denormalized fields derived from ts.
func NewMessage(ts time.Time, author, text string) Message {
	return Message{
		Timestamp: ts,
		Date:      ts.Format("2006-01-02"),
		Time:      ts.Format("15:04:05"),
		Hour:      ts.Hour(),
		Weekday:   MondayWeekday(ts),
		Author:    author,
		Text:      text,
	}
}

// MondayWeekday returns the Monday-first weekday index (0 = Monday, 6 = Sunday)
// for the given time.
func MondayWeekday(ts time.Time) int {
	return (int(ts.Weekday()) + 6) % 7
}
