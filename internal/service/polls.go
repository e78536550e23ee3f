// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// PollInput is the poll form. Options holds one option per line.
type PollInput struct {
	Question  string
	Options   string
	ExpiresAt *time.Time
}

// Tally counts the votes of one poll.
type Tally struct {
	Counts []int
	Total  int
	// Choice is the viewer's option, or -1.
	Choice int
}

// Percent returns the share of option i in whole percent.
func (t Tally) Percent(i int) int {
	if t.Total == 0 || i < 0 || i >= len(t.Counts) {
		return 0
	}
	return t.Counts[i] * 100 / t.Total
}

// Count returns the votes for option i.
func (t Tally) Count(i int) int {
	if i < 0 || i >= len(t.Counts) {
		return 0
	}
	return t.Counts[i]
}

// Polls manages polls and their votes.
type Polls struct {
	repo *store.Repository
	now  func() time.Time
	dash *Dashboard
}

// Descriptor describes the polls page.
func (s *Polls) Descriptor() *view.Descriptor[model.Poll] {
	return &view.Descriptor[model.Poll]{
		Title:  "Polls",
		Source: s.repo.Polls,
		ID:     func(p *model.Poll) string { return p.ID },
		Order:  store.Desc("createdAt"),
		Mutations: map[view.Mutation][]model.Role{
			view.Vote:   {model.RoleStudent},
			view.Create: staffRoles,
			view.Delete: staffRoles,
		},
		Empty: view.Empty{
			Title:   "No polls",
			Message: "There are no polls right now.",
			Action:  "Create Poll",
		},
		Annotate: s.annotate,
		Badges: func(p *model.Poll, pg *view.Page[model.Poll]) []view.Badge {
			var badges []view.Badge
			if p.IsExpired(pg.Now) {
				badges = append(badges, view.Badge{Label: "EXPIRED", Color: "red"})
			} else {
				badges = append(badges, view.Badge{Label: "ACTIVE", Color: "green"})
			}
			if pg.IsMarked(p.ID) {
				badges = append(badges, view.Badge{Label: "VOTED", Color: "blue"})
			}
			return badges
		},
	}
}

// annotate marks the polls the viewer voted on and stores per-poll tallies
// under Extra["tallies"]. Votes are counted in the database; only the
// viewer's own votes are loaded.
func (s *Polls) annotate(ctx context.Context, p *view.Page[model.Poll]) error {
	tallies := make(map[string]Tally, len(p.Items))
	for _, poll := range p.Items {
		tallies[poll.ID] = Tally{Counts: make([]int, len(poll.Options)), Choice: -1}
	}

	groups, err := s.repo.PollVotes.CountBy(ctx, nil, "pollId", "optionIndex")
	if err != nil {
		return err
	}
	for _, g := range groups {
		t, ok := tallies[g.Keys[0]]
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(g.Keys[1]); err == nil && i >= 0 && i < len(t.Counts) {
			t.Counts[i] += g.Count
			t.Total += g.Count
		}
		tallies[g.Keys[0]] = t
	}

	if p.Viewer.UserID != "" {
		mine, err := s.repo.PollVotes.List(ctx, store.Query{Where: store.Where{"userId": p.Viewer.UserID}})
		if err != nil {
			return err
		}
		for _, v := range mine {
			t, ok := tallies[v.PollID]
			if !ok {
				continue
			}
			t.Choice = v.OptionIndex
			tallies[v.PollID] = t
			p.Mark(v.PollID)
		}
	}
	p.Extra["tallies"] = tallies
	return nil
}

// Create publishes a poll.
func (s *Polls) Create(ctx context.Context, v view.Viewer, in PollInput) (model.Poll, error) {
	if err := authorize(s.Descriptor(), view.Create, v); err != nil {
		return model.Poll{}, err
	}
	poll := &model.Poll{
		UserID:   v.UserID,
		Question: strings.TrimSpace(in.Question),
		Options:  model.ParseLines(in.Options),
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC()
		poll.ExpiresAt = &exp
	}
	created, err := s.repo.Polls.Create(ctx, poll)
	if err == nil {
		s.dash.Invalidate(ctx)
	}
	return created, err
}

// Vote records the viewer's choice on poll. Expired polls reject votes
// whether or not the viewer voted before; a second vote is ErrAlreadyVoted
// and leaves the first one in place.
func (s *Polls) Vote(ctx context.Context, v view.Viewer, poll model.Poll, option int) (model.PollVote, error) {
	if err := authorize(s.Descriptor(), view.Vote, v); err != nil {
		return model.PollVote{}, err
	}
	if poll.IsExpired(s.now()) {
		return model.PollVote{}, ErrPollExpired
	}
	if option < 0 || option >= len(poll.Options) {
		return model.PollVote{}, ErrInvalidOption
	}

	vote, err := s.repo.PollVotes.Create(ctx, &model.PollVote{
		PollID:      poll.ID,
		UserID:      v.UserID,
		OptionIndex: option,
	})
	if errors.Is(err, store.ErrConflict) {
		return vote, ErrAlreadyVoted
	}
	return vote, err
}

// Delete removes a poll together with its votes.
func (s *Polls) Delete(ctx context.Context, v view.Viewer, id string) error {
	if err := remove(ctx, s.repo.Polls, s.Descriptor(), v, id); err != nil {
		return err
	}
	s.dash.Invalidate(ctx)
	return nil
}

// ApplyVote patches a page after a successful vote.
func ApplyVote(p *view.Page[model.Poll], vote model.PollVote) {
	p.Mark(vote.PollID)
	tallies, _ := p.Extra["tallies"].(map[string]Tally)
	if tallies == nil {
		return
	}
	t, ok := tallies[vote.PollID]
	if !ok || vote.OptionIndex >= len(t.Counts) {
		return
	}
	counts := append([]int(nil), t.Counts...)
	counts[vote.OptionIndex]++
	tallies[vote.PollID] = Tally{Counts: counts, Total: t.Total + 1, Choice: vote.OptionIndex}
}

// PrependPoll adds a newly created poll to a page with an empty tally.
func PrependPoll(p *view.Page[model.Poll], poll model.Poll) {
	p.Prepend(poll)
	tallies, _ := p.Extra["tallies"].(map[string]Tally)
	if tallies == nil {
		tallies = make(map[string]Tally)
		p.Extra["tallies"] = tallies
	}
	tallies[poll.ID] = Tally{Counts: make([]int, len(poll.Options)), Choice: -1}
}
