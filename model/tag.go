package model

import "time"

// TagType partitions which tag collection a tag may be linked into.
type TagType string

const (
	TagTypeSong    TagType = "Song"
	TagTypePodcast TagType = "Podcast"
)

// Valid reports whether t is a recognized tag type.
func (t TagType) Valid() bool {
	return t == TagTypeSong || t == TagTypePodcast
}

// Tag classifies audios within one tag type.
type Tag struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Type      TagType   `gorm:"size:16;index" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TagLink is the reverse index keyed by tag: it records every audio a tag is
// linked to, regardless of which type-scoped collection holds the forward
// association. Written in the same transaction as the forward link.
type TagLink struct {
	TagID     int64     `gorm:"primaryKey;autoIncrement:false" json:"tagId"`
	AudioID   int64     `gorm:"primaryKey;autoIncrement:false" json:"audioId"`
	Type      TagType   `gorm:"size:16" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
