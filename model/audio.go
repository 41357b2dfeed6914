package model

import "time"

// Audio represents an uploaded audio (single track or album-bound track).
type Audio struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255" json:"title"`
	StoragePath string    `gorm:"size:512" json:"-"` // Object key in storage, not exposed in API directly
	Duration    int       `json:"duration"`          // Duration in seconds
	ReleaseDate time.Time `json:"releaseDate"`
	IsAlbum     bool      `json:"isAlbum"`
	IsPrivate   bool      `json:"isPrivate"`
	ImagePath   string    `gorm:"size:512" json:"imagePath"`

	Artists     []User `gorm:"many2many:audio_artists" json:"artists,omitempty"`
	SongTags    []Tag  `gorm:"many2many:audio_song_tags" json:"songTags,omitempty"`
	PodcastTags []Tag  `gorm:"many2many:audio_podcast_tags" json:"podcastTags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Private reports whether the audio is visible only to its artists or an admin.
func (a *Audio) Private() bool { return a.IsPrivate }

// OwnerIDs returns the ids of the audio's artists.
func (a *Audio) OwnerIDs() []int64 {
	ids := make([]int64, 0, len(a.Artists))
	for _, u := range a.Artists {
		ids = append(ids, u.ID)
	}
	return ids
}

// AudioPatch carries a partial update. Nil fields are left untouched.
type AudioPatch struct {
	Title       *string
	StoragePath *string
	Duration    *int
	ReleaseDate *time.Time
	IsAlbum     *bool
	IsPrivate   *bool
	ImagePath   *string
}

// Fields returns the patch as a column/value map for the store, containing
// only the fields that are set.
func (p *AudioPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.StoragePath != nil {
		fields["storage_path"] = *p.StoragePath
	}
	if p.Duration != nil {
		fields["duration"] = *p.Duration
	}
	if p.ReleaseDate != nil {
		fields["release_date"] = *p.ReleaseDate
	}
	if p.IsAlbum != nil {
		fields["is_album"] = *p.IsAlbum
	}
	if p.IsPrivate != nil {
		fields["is_private"] = *p.IsPrivate
	}
	if p.ImagePath != nil {
		fields["image_path"] = *p.ImagePath
	}
	return fields
}
