package models

import "time"

type AnnouncementStatus string

const (
	AnnouncementPending   AnnouncementStatus = "pending"
	AnnouncementDelivered AnnouncementStatus = "delivered"
	AnnouncementFailed    AnnouncementStatus = "failed"
)

type Announcement struct {
	ID        int64              `json:"id"`
	Link      string             `json:"link"`
	Title     *string            `json:"title"`
	Status    AnnouncementStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// HistoryEntry: элемент истории объявлений роли.
type HistoryEntry struct {
	Link  string  `json:"link"`
	Title *string `json:"title"`
}
