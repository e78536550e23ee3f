// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// UserSession is a record of the userSessions collection, written on
// every successful sign-in.
type UserSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId" validate:"required"`
	UserName  string    `json:"userName"`
	Role      Role      `json:"role" validate:"required,role"`
	IPAddress string    `json:"ipAddress"`
	Country   string    `json:"country"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	LoginTime time.Time `json:"loginTime"`
}
