// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/mileusna/useragent"

	"github.com/campuslink/campuslink/internal/geoip"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/view"
)

// Client describes the browser a user signed in from.
type Client struct {
	Browser string
	OS      string
	Device  string
}

// ParseClient extracts browser, OS and device type from a User-Agent header.
func ParseClient(uaString string) Client {
	ua := useragent.Parse(uaString)

	c := Client{Browser: ua.Name, OS: ua.OS}
	if c.Browser == "" {
		c.Browser = "Unknown"
	}
	if c.OS == "" {
		c.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		c.Device = "mobile"
	case ua.Tablet:
		c.Device = "tablet"
	case ua.Bot:
		c.Device = "bot"
	default:
		c.Device = "desktop"
	}
	return c
}

// Sessions records and lists sign-ins.
type Sessions struct {
	repo   *store.Repository
	geo    *geoip.Lookup
	logger *slog.Logger
}

// Descriptor describes the staff sessions page.
func (s *Sessions) Descriptor() *view.Descriptor[model.UserSession] {
	return &view.Descriptor[model.UserSession]{
		Title:  "User Sessions",
		Source: s.repo.UserSessions,
		ID:     func(us *model.UserSession) string { return us.ID },
		Order:  store.Desc("loginTime"),
		Limit:  50,
		Empty: view.Empty{
			Title:   "No sessions",
			Message: "Nobody has signed in yet.",
		},
		Badges: func(us *model.UserSession, _ *view.Page[model.UserSession]) []view.Badge {
			color := "blue"
			if us.Role.IsStaff() {
				color = "purple"
			}
			return []view.Badge{{Label: string(us.Role), Color: color}}
		},
	}
}

// Record stores a userSessions entry for a successful sign-in. A failure is
// logged and does not affect the sign-in.
func (s *Sessions) Record(ctx context.Context, u model.User, ip, userAgent string) {
	c := ParseClient(userAgent)
	country := ""
	if s.geo != nil {
		country = s.geo.Country(ip)
	}
	_, err := s.repo.UserSessions.Create(ctx, &model.UserSession{
		UserID:    u.ID,
		UserName:  u.Name,
		Role:      u.Role,
		IPAddress: ip,
		Country:   country,
		Browser:   c.Browser,
		OS:        c.OS,
		Device:    c.Device,
	})
	if err != nil {
		s.logger.Error("recording user session", "user_id", u.ID, "error", err)
	}
}
