// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"

	"github.com/campuslink/campuslink/internal/model"
)

// Collection names.
const (
	CollectionUsers             = "users"
	CollectionAnnouncements     = "announcements"
	CollectionComplaints        = "complaints"
	CollectionEvents            = "events"
	CollectionPolls             = "polls"
	CollectionPollVotes         = "pollVotes"
	CollectionFeedbackForms     = "feedbackForms"
	CollectionFeedbackResponses = "feedbackResponses"
	CollectionResources         = "resources"
	CollectionTimetables        = "timetables"
	CollectionUserSessions      = "userSessions"
)

// Repository exposes every collection of the portal.
type Repository struct {
	db *sql.DB

	Users             *Collection[model.User]
	Announcements     *Collection[model.Announcement]
	Complaints        *Collection[model.Complaint]
	Events            *Collection[model.Event]
	Polls             *Collection[model.Poll]
	PollVotes         *Collection[model.PollVote]
	FeedbackForms     *Collection[model.FeedbackForm]
	FeedbackResponses *Collection[model.FeedbackResponse]
	Resources         *Collection[model.Resource]
	Timetables        *Collection[model.Timetable]
	UserSessions      *Collection[model.UserSession]
	EventLog          *EventLog
}

// NewRepository returns a repository backed by db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:                db,
		Users:             NewCollection(db, UserSchema),
		Announcements:     NewCollection(db, AnnouncementSchema),
		Complaints:        NewCollection(db, ComplaintSchema),
		Events:            NewCollection(db, EventSchema),
		Polls:             NewCollection(db, PollSchema),
		PollVotes:         NewCollection(db, PollVoteSchema),
		FeedbackForms:     NewCollection(db, FeedbackFormSchema),
		FeedbackResponses: NewCollection(db, FeedbackResponseSchema),
		Resources:         NewCollection(db, ResourceSchema),
		Timetables:        NewCollection(db, TimetableSchema),
		UserSessions:      NewCollection(db, UserSessionSchema),
		EventLog:          NewEventLog(db),
	}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// UserSchema maps users.
var UserSchema = Schema[model.User]{
	Collection: CollectionUsers,
	Table:      "users",
	Fields: []Field{
		{"id", "id"}, {"email", "email"}, {"password", "password"}, {"name", "name"},
		{"role", "role"}, {"department", "department"}, {"year", "year"},
		{"phone", "phone"}, {"address", "address"},
		{"createdAt", "created_at"}, {"updatedAt", "updated_at"},
	},
	Pointers: func(u *model.User) []any {
		return []any{&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Department, &u.Year,
			&u.Phone, &u.Address, &u.CreatedAt, &u.UpdatedAt}
	},
	Created: "createdAt",
	Updated: "updatedAt",
}

// AnnouncementSchema maps announcements.
var AnnouncementSchema = Schema[model.Announcement]{
	Collection: CollectionAnnouncements,
	Table:      "announcements",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"title", "title"}, {"content", "content"},
		{"priority", "priority"}, {"createdAt", "created_at"},
	},
	Pointers: func(a *model.Announcement) []any {
		return []any{&a.ID, &a.UserID, &a.Title, &a.Content, &a.Priority, &a.CreatedAt}
	},
	Created: "createdAt",
}

// ComplaintSchema maps complaints.
var ComplaintSchema = Schema[model.Complaint]{
	Collection: CollectionComplaints,
	Table:      "complaints",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"title", "title"}, {"description", "description"},
		{"category", "category"}, {"status", "status"}, {"adminResponse", "admin_response"},
		{"createdAt", "created_at"}, {"updatedAt", "updated_at"},
	},
	Pointers: func(c *model.Complaint) []any {
		return []any{&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category, &c.Status,
			&c.AdminResponse, &c.CreatedAt, &c.UpdatedAt}
	},
	Created: "createdAt",
	Updated: "updatedAt",
}

// EventSchema maps events.
var EventSchema = Schema[model.Event]{
	Collection: CollectionEvents,
	Table:      "events",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"title", "title"}, {"description", "description"},
		{"eventDate", "event_date"}, {"location", "location"}, {"createdAt", "created_at"},
	},
	Pointers: func(e *model.Event) []any {
		return []any{&e.ID, &e.UserID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.CreatedAt}
	},
	Created: "createdAt",
}

// PollSchema maps polls.
var PollSchema = Schema[model.Poll]{
	Collection: CollectionPolls,
	Table:      "polls",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"question", "question"}, {"options", "options"},
		{"expiresAt", "expires_at"}, {"createdAt", "created_at"},
	},
	Pointers: func(p *model.Poll) []any {
		return []any{&p.ID, &p.UserID, &p.Question, &p.Options, &p.ExpiresAt, &p.CreatedAt}
	},
	Created: "createdAt",
}

// PollVoteSchema maps pollVotes.
var PollVoteSchema = Schema[model.PollVote]{
	Collection: CollectionPollVotes,
	Table:      "poll_votes",
	Fields: []Field{
		{"id", "id"}, {"pollId", "poll_id"}, {"userId", "user_id"},
		{"optionIndex", "option_index"}, {"createdAt", "created_at"},
	},
	Pointers: func(v *model.PollVote) []any {
		return []any{&v.ID, &v.PollID, &v.UserID, &v.OptionIndex, &v.CreatedAt}
	},
	Created: "createdAt",
}

// FeedbackFormSchema maps feedbackForms.
var FeedbackFormSchema = Schema[model.FeedbackForm]{
	Collection: CollectionFeedbackForms,
	Table:      "feedback_forms",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"title", "title"}, {"description", "description"},
		{"questions", "questions"}, {"createdAt", "created_at"},
	},
	Pointers: func(f *model.FeedbackForm) []any {
		return []any{&f.ID, &f.UserID, &f.Title, &f.Description, &f.Questions, &f.CreatedAt}
	},
	Created: "createdAt",
}

// FeedbackResponseSchema maps feedbackResponses.
var FeedbackResponseSchema = Schema[model.FeedbackResponse]{
	Collection: CollectionFeedbackResponses,
	Table:      "feedback_responses",
	Fields: []Field{
		{"id", "id"}, {"formId", "form_id"}, {"userId", "user_id"},
		{"answers", "answers"}, {"createdAt", "created_at"},
	},
	Pointers: func(r *model.FeedbackResponse) []any {
		return []any{&r.ID, &r.FormID, &r.UserID, &r.Answers, &r.CreatedAt}
	},
	Created: "createdAt",
}

// ResourceSchema maps resources.
var ResourceSchema = Schema[model.Resource]{
	Collection: CollectionResources,
	Table:      "resources",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"title", "title"}, {"description", "description"},
		{"category", "category"}, {"fileUrl", "file_url"}, {"thumbnailUrl", "thumbnail_url"},
		{"createdAt", "created_at"},
	},
	Pointers: func(r *model.Resource) []any {
		return []any{&r.ID, &r.UserID, &r.Title, &r.Description, &r.Category, &r.FileURL,
			&r.ThumbnailURL, &r.CreatedAt}
	},
	Created: "createdAt",
}

// TimetableSchema maps timetables.
var TimetableSchema = Schema[model.Timetable]{
	Collection: CollectionTimetables,
	Table:      "timetables",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"department", "department"}, {"year", "year"},
		{"fileUrl", "file_url"}, {"createdAt", "created_at"}, {"updatedAt", "updated_at"},
	},
	Pointers: func(t *model.Timetable) []any {
		return []any{&t.ID, &t.UserID, &t.Department, &t.Year, &t.FileURL, &t.CreatedAt, &t.UpdatedAt}
	},
	Created: "createdAt",
	Updated: "updatedAt",
}

// UserSessionSchema maps userSessions.
var UserSessionSchema = Schema[model.UserSession]{
	Collection: CollectionUserSessions,
	Table:      "user_sessions",
	Fields: []Field{
		{"id", "id"}, {"userId", "user_id"}, {"userName", "user_name"}, {"role", "role"},
		{"ipAddress", "ip_address"}, {"country", "country"}, {"browser", "browser"},
		{"os", "os"}, {"device", "device"}, {"loginTime", "login_time"},
	},
	Pointers: func(s *model.UserSession) []any {
		return []any{&s.ID, &s.UserID, &s.UserName, &s.Role, &s.IPAddress, &s.Country,
			&s.Browser, &s.OS, &s.Device, &s.LoginTime}
	},
	Created: "loginTime",
}
