package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/poll"
)

type pollRepository struct {
	db *pollTable
}

var _ poll.Repository = (*pollRepository)(nil) // interface compliance check

func NewPollRepository(db *DB) poll.Repository {
	return &pollRepository{db: db.poll}
}

func (repo *pollRepository) CreatePoll(_ context.Context, p poll.Poll) (poll.Poll, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *pollRepository) GetPollByID(_ context.Context, id string) (poll.Poll, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return poll.Poll{}, poll.ErrNotFound
}

func (repo *pollRepository) QueryPollsBySection(_ context.Context, sectionID string) ([]poll.Poll, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var polls []poll.Poll
	for _, p := range repo.db.table {
		if p.SectionID == sectionID {
			polls = append(polls, *p)
		}
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].CreatedAt.After(polls[j].CreatedAt) })
	return polls, nil
}

func (repo *pollRepository) UpdatePoll(_ context.Context, p poll.Poll) (poll.Poll, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return poll.Poll{}, poll.ErrNotFound
	}
	orig.IsOpen = p.IsOpen
	if !p.UpdatedAt.IsZero() {
		orig.UpdatedAt = p.UpdatedAt
	}
	return *orig, nil
}

func (repo *pollRepository) DeletePollsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.votes, id)
	}
	return nil
}

func (repo *pollRepository) UpsertVote(_ context.Context, v poll.Vote) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[v.PollID]
	if !ok {
		return poll.ErrNotFound
	}

	votes, ok := repo.db.votes[v.PollID]
	if !ok {
		votes = make(map[string]string)
		repo.db.votes[v.PollID] = votes
	}

	// last write wins: retract any previous vote first
	if prevOptionID, voted := votes[v.StudentID]; voted {
		for i := range p.Options {
			if p.Options[i].ID == prevOptionID {
				p.Options[i].Votes--
				break
			}
		}
	}
	votes[v.StudentID] = v.OptionID
	for i := range p.Options {
		if p.Options[i].ID == v.OptionID {
			p.Options[i].Votes++
			break
		}
	}
	return nil
}
