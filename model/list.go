package model

import "time"

// ListType classifies a list. The My* values are per-user singletons created
// at account setup and are not creatable through the generic create path.
type ListType string

const (
	ListTypeMyAudios    ListType = "MyAudios"
	ListTypeMyFavorites ListType = "MyFavorites"
	ListTypeMyPodcasts  ListType = "MyPodcasts"
	ListTypeNormal      ListType = "Normal"
)

// Valid reports whether t is a recognized list type.
func (t ListType) Valid() bool {
	switch t {
	case ListTypeMyAudios, ListTypeMyFavorites, ListTypeMyPodcasts, ListTypeNormal:
		return true
	}
	return false
}

// Reserved reports whether t is a system-reserved singleton type.
func (t ListType) Reserved() bool {
	return t == ListTypeMyAudios || t == ListTypeMyFavorites || t == ListTypeMyPodcasts
}

// List represents a playlist or album.
type List struct {
	ID          int64    `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"size:255" json:"name"`
	IsAlbum     bool     `json:"isAlbum"`
	IsPrivate   bool     `json:"isPrivate"`
	Description string   `gorm:"size:1024" json:"description"`
	ImagePath   string   `gorm:"size:512" json:"imagePath"`
	Type        ListType `gorm:"size:16;index" json:"type"`

	Owners        []User  `gorm:"many2many:list_owners" json:"owners,omitempty"`
	Collaborators []User  `gorm:"many2many:list_collaborators" json:"collaborators,omitempty"`
	Followers     []User  `gorm:"many2many:list_followers" json:"followers,omitempty"`
	Audios        []Audio `gorm:"many2many:list_audios" json:"audios,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Private reports whether the list is visible only to its owners or an admin.
func (l *List) Private() bool { return l.IsPrivate }

// OwnerIDs returns the ids of the list's owners.
func (l *List) OwnerIDs() []int64 {
	ids := make([]int64, 0, len(l.Owners))
	for _, u := range l.Owners {
		ids = append(ids, u.ID)
	}
	return ids
}

// CollaboratorIDs returns the ids of the list's collaborators.
func (l *List) CollaboratorIDs() []int64 {
	ids := make([]int64, 0, len(l.Collaborators))
	for _, u := range l.Collaborators {
		ids = append(ids, u.ID)
	}
	return ids
}

// ListPatch carries a partial update. Nil fields are left untouched.
type ListPatch struct {
	Name        *string
	IsAlbum     *bool
	IsPrivate   *bool
	Description *string
	ImagePath   *string
}

// Fields returns the patch as a column/value map for the store, containing
// only the fields that are set.
func (p *ListPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.IsAlbum != nil {
		fields["is_album"] = *p.IsAlbum
	}
	if p.IsPrivate != nil {
		fields["is_private"] = *p.IsPrivate
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.ImagePath != nil {
		fields["image_path"] = *p.ImagePath
	}
	return fields
}
