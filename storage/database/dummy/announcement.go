package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[ann.ID] = &ann
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id string) (announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ann, ok := repo.db.table[id]; ok {
		return *ann, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncementsBySection(_ context.Context, sectionID string) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var anns []announcement.Announcement
	for _, ann := range repo.db.table {
		if ann.SectionID == sectionID {
			anns = append(anns, *ann)
		}
	}
	// pinned first, then newest first
	sort.Slice(anns, func(i, j int) bool {
		if anns[i].IsPinned != anns[j].IsPinned {
			return anns[i].IsPinned
		}
		return anns[i].CreatedAt.After(anns[j].CreatedAt)
	})
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[ann.ID]
	if !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	if ann.Title != "" {
		orig.Title = ann.Title
	}
	if ann.Body != "" {
		orig.Body = ann.Body
	}
	orig.IsPinned = ann.IsPinned
	if !ann.UpdatedAt.IsZero() {
		orig.UpdatedAt = ann.UpdatedAt
	}
	return *orig, nil
}

func (repo *announcementRepository) DeleteAnnouncementsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
