// Package relation keeps the many-to-many links between audios, lists, tags
// and users consistent across mutations. Multi-step updates run inside a
// store transaction and roll back as a unit.
package relation

import (
	"context"
	"errors"

	"github.com/Garicore01/PlayBeat-Backend/errs"
	"github.com/Garicore01/PlayBeat-Backend/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Synchronizer maintains relationship consistency for audio and list
// resources. All set operations are idempotent: re-adding an existing link or
// removing an absent one succeeds without error.
type Synchronizer struct {
	db *gorm.DB
}

// NewSynchronizer creates a Synchronizer on top of the given store handle.
func NewSynchronizer(db *gorm.DB) *Synchronizer {
	return &Synchronizer{db: db}
}

func (s *Synchronizer) loadAudio(ctx context.Context, audioID int64) (*model.Audio, error) {
	var audio model.Audio
	if err := s.db.WithContext(ctx).First(&audio, audioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("Audio not found")
		}
		return nil, errs.Internal("Failed to load audio", err)
	}
	return &audio, nil
}

func (s *Synchronizer) loadList(ctx context.Context, listID int64) (*model.List, error) {
	var list model.List
	if err := s.db.WithContext(ctx).First(&list, listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("List not found")
		}
		return nil, errs.Internal("Failed to load list", err)
	}
	return &list, nil
}

// LinkTag associates a tag with an audio in the tag-type-scoped collection
// and records the association in the reverse index keyed by tag. Both writes
// commit or roll back together.
//
// Fails with a not-found error when the tag does not exist, and with a bad
// request when the tag type is unrecognized or does not match the tag's
// declared type. On failure the audio's tag sets are left unchanged.
func (s *Synchronizer) LinkTag(ctx context.Context, audioID, tagID int64, tagType model.TagType) error {
	if !tagType.Valid() {
		return errs.BadRequest("Invalid tag type")
	}

	audio, err := s.loadAudio(ctx, audioID)
	if err != nil {
		return err
	}

	var tag model.Tag
	if err := s.db.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("Tag not found")
		}
		return errs.Internal("Failed to load tag", err)
	}
	if tag.Type != tagType {
		return errs.BadRequest("Invalid tag type")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collection := "SongTags"
		if tagType == model.TagTypePodcast {
			collection = "PodcastTags"
		}
		if err := tx.Model(audio).Association(collection).Append(&tag); err != nil {
			return err
		}

		link := model.TagLink{TagID: tag.ID, AudioID: audio.ID, Type: tagType}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
	if err != nil {
		return errs.Internal("Failed to link tag", err)
	}
	return nil
}

// AddOwners adds the given users to the audio's artist set. Every user must
// exist; re-adding an existing owner is a no-op.
func (s *Synchronizer) AddOwners(ctx context.Context, audioID int64, userIDs []int64) error {
	audio, err := s.loadAudio(ctx, audioID)
	if err != nil {
		return err
	}

	users, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(audio).Association("Artists").Append(&users); err != nil {
		return errs.Internal("Failed to add owners", err)
	}
	return nil
}

// AddListOwners adds the given users to the list's owner set.
func (s *Synchronizer) AddListOwners(ctx context.Context, listID int64, userIDs []int64) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}

	users, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(list).Association("Owners").Append(&users); err != nil {
		return errs.Internal("Failed to add list owners", err)
	}
	return nil
}

// VerifyUsers checks that every id resolves to an existing user. Creation
// paths call it before persisting anything, so an invalid owner list cannot
// leave an ownerless resource behind.
func (s *Synchronizer) VerifyUsers(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.loadUsers(ctx, userIDs)
	return err
}

// loadUsers resolves userIDs, failing when any id does not exist.
func (s *Synchronizer) loadUsers(ctx context.Context, userIDs []int64) ([]model.User, error) {
	seen := make(map[int64]struct{}, len(userIDs))
	unique := make([]int64, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", unique).Find(&users).Error; err != nil {
		return nil, errs.Internal("Failed to load users", err)
	}
	if len(users) != len(unique) {
		return nil, errs.NotFound("User not found")
	}
	return users, nil
}

// AddMember adds an audio to a list's member set.
func (s *Synchronizer) AddMember(ctx context.Context, listID, audioID int64) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	audio, err := s.loadAudio(ctx, audioID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(list).Association("Audios").Append(audio); err != nil {
		return errs.Internal("Failed to add audio to list", err)
	}
	return nil
}

// RemoveMember removes an audio from a list's member set. Removing an absent
// member succeeds without error.
func (s *Synchronizer) RemoveMember(ctx context.Context, listID, audioID int64) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	audio, err := s.loadAudio(ctx, audioID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(list).Association("Audios").Delete(audio); err != nil {
		return errs.Internal("Failed to remove audio from list", err)
	}
	return nil
}

// Follow subscribes a user to a list.
func (s *Synchronizer) Follow(ctx context.Context, listID, userID int64) error {
	return s.appendUserAssociation(ctx, listID, userID, "Followers")
}

// Unfollow removes a user's subscription. A repeated unfollow is a no-op.
func (s *Synchronizer) Unfollow(ctx context.Context, listID, userID int64) error {
	return s.deleteUserAssociation(ctx, listID, userID, "Followers")
}

// AddCollaborator grants a user membership-write authority on a list.
func (s *Synchronizer) AddCollaborator(ctx context.Context, listID, userID int64) error {
	return s.appendUserAssociation(ctx, listID, userID, "Collaborators")
}

// RemoveCollaborator revokes a user's collaborator authority.
func (s *Synchronizer) RemoveCollaborator(ctx context.Context, listID, userID int64) error {
	return s.deleteUserAssociation(ctx, listID, userID, "Collaborators")
}

func (s *Synchronizer) appendUserAssociation(ctx context.Context, listID, userID int64, assoc string) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}

	users, err := s.loadUsers(ctx, []int64{userID})
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(list).Association(assoc).Append(&users[0]); err != nil {
		return errs.Internal("Failed to update list "+assoc, err)
	}
	return nil
}

func (s *Synchronizer) deleteUserAssociation(ctx context.Context, listID, userID int64, assoc string) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}

	users, err := s.loadUsers(ctx, []int64{userID})
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(list).Association(assoc).Delete(&users[0]); err != nil {
		return errs.Internal("Failed to update list "+assoc, err)
	}
	return nil
}
