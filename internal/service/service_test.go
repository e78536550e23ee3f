// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/internal/cache"
	"github.com/campuslink/campuslink/internal/model"
	"github.com/campuslink/campuslink/internal/storage"
	"github.com/campuslink/campuslink/internal/store"
	"github.com/campuslink/campuslink/internal/testutil"
	"github.com/campuslink/campuslink/internal/view"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Services
	repo    *store.Repository
	dir     string
	student view.Viewer
	staff   view.Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := testutil.TestRepository(t)
	dir := t.TempDir()
	files, err := storage.NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	svc := New(Deps{
		Repo:     repo,
		Storage:  files,
		Cache:    cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}),
		Logger:   testutil.TestLogger(),
		Now:      func() time.Time { return testNow },
		StatsTTL: time.Minute,
	})

	student := testutil.CreateUser(t, repo, "student@campus.edu", model.RoleStudent, nil)
	staff := testutil.CreateUser(t, repo, "staff@campus.edu", model.RoleStaff, nil)
	return &fixture{
		svc:     svc,
		repo:    repo,
		dir:     dir,
		student: view.Viewer{UserID: student.ID, Role: student.Role},
		staff:   view.Viewer{UserID: staff.ID, Role: staff.Role},
	}
}

func TestAnnouncementsStaffOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Announcements.Create(ctx, f.student, AnnouncementInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrForbidden)

	a, err := f.svc.Announcements.Create(ctx, f.staff, AnnouncementInput{Title: " Exams ", Content: "Next week"})
	require.NoError(t, err)
	assert.Equal(t, "Exams", a.Title)
	assert.Equal(t, model.PriorityNormal, a.Priority)

	assert.ErrorIs(t, f.svc.Announcements.Delete(ctx, f.student, a.ID), ErrForbidden)
	require.NoError(t, f.svc.Announcements.Delete(ctx, f.staff, a.ID))
	// Deleting again succeeds.
	require.NoError(t, f.svc.Announcements.Delete(ctx, f.staff, a.ID))
}

func TestComplaintsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := testutil.CreateUser(t, f.repo, "other@campus.edu", model.RoleStudent, nil)
	otherViewer := view.Viewer{UserID: other.ID, Role: other.Role}

	mine, err := f.svc.Complaints.Create(ctx, f.student, ComplaintInput{Title: "Wifi", Description: "Down", Category: "hostel"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, mine.Status)
	_, err = f.svc.Complaints.Create(ctx, otherViewer, ComplaintInput{Title: "Bus", Description: "Late", Category: "transport"})
	require.NoError(t, err)

	page := view.Load(ctx, f.svc.Complaints.Descriptor(), f.student, nil, testNow)
	require.NoError(t, page.Err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	page = view.Load(ctx, f.svc.Complaints.Descriptor(), f.staff, nil, testNow)
	require.NoError(t, page.Err)
	assert.Len(t, page.Items, 2)
}

func TestComplaintReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Complaints.Create(ctx, f.student, ComplaintInput{Title: "Wifi", Description: "Down", Category: "hostel"})
	require.NoError(t, err)

	_, err = f.svc.Complaints.StartReview(ctx, f.student, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Complaints.StartReview(ctx, f.staff, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.NotNil(t, got.UpdatedAt)

	_, err = f.svc.Complaints.Review(ctx, f.staff, c.ID, ReviewInput{Status: model.StatusPending})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = f.svc.Complaints.Review(ctx, f.staff, c.ID, ReviewInput{Status: model.StatusResolved, Response: "Router replaced"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, got.Status)
	assert.Equal(t, "Router replaced", got.AdminResponse)
}

func TestEventsWhenFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past, err := f.svc.Events.Create(ctx, f.staff, EventInput{Title: "Orientation", Description: "Hall A", EventDate: testNow.Add(-48 * time.Hour), Location: "Hall A"})
	require.NoError(t, err)
	next, err := f.svc.Events.Create(ctx, f.staff, EventInput{Title: "Hackathon", Description: "Lab 3", EventDate: testNow.Add(48 * time.Hour), Location: "Lab 3"})
	require.NoError(t, err)

	page := view.Load(ctx, f.svc.Events.Descriptor(), f.student, url.Values{"when": {"upcoming"}}, testNow)
	require.NoError(t, page.Err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, next.ID, page.Items[0].ID)
	assert.Equal(t, "UPCOMING", page.Rows()[0].Badges[0].Label)

	page = view.Load(ctx, f.svc.Events.Descriptor(), f.student, url.Values{"when": {"past"}}, testNow)
	require.Len(t, page.Items, 1)
	assert.Equal(t, past.ID, page.Items[0].ID)
	assert.Equal(t, "COMPLETED", page.Rows()[0].Badges[0].Label)
}

func TestVoteOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	poll, err := f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Best day?", Options: "Mon\nFri\n"})
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"Mon", "Fri"}, poll.Options)

	_, err = f.svc.Polls.Vote(ctx, f.student, poll, 5)
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = f.svc.Polls.Vote(ctx, f.student, poll, 1)
	require.NoError(t, err)
	_, err = f.svc.Polls.Vote(ctx, f.student, poll, 0)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	votes, err := f.repo.PollVotes.List(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, 1, votes[0].OptionIndex)

	page := view.Load(ctx, f.svc.Polls.Descriptor(), f.student, nil, testNow)
	require.NoError(t, page.Err)
	assert.True(t, page.IsMarked(poll.ID))
	tallies := page.Extra["tallies"].(map[string]Tally)
	assert.Equal(t, []int{0, 1}, tallies[poll.ID].Counts)
	assert.Equal(t, 1, tallies[poll.ID].Choice)
	assert.Equal(t, 100, tallies[poll.ID].Percent(1))
}

func TestPollTalliesCountEveryVoter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	voted, err := f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Canteen menu?", Options: "Veg\nMixed\nNone"})
	require.NoError(t, err)
	other, err := f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Library hours?", Options: "Early\nLate"})
	require.NoError(t, err)

	_, err = f.svc.Polls.Vote(ctx, f.student, voted, 2)
	require.NoError(t, err)
	for i, email := range []string{"a@campus.edu", "b@campus.edu"} {
		u := testutil.CreateUser(t, f.repo, email, model.RoleStudent, nil)
		classmate := view.Viewer{UserID: u.ID, Role: u.Role}
		_, err = f.svc.Polls.Vote(ctx, classmate, voted, 0)
		require.NoError(t, err)
		_, err = f.svc.Polls.Vote(ctx, classmate, other, i)
		require.NoError(t, err)
	}

	page := view.Load(ctx, f.svc.Polls.Descriptor(), f.student, nil, testNow)
	require.NoError(t, page.Err)
	tallies := page.Extra["tallies"].(map[string]Tally)

	assert.Equal(t, []int{2, 0, 1}, tallies[voted.ID].Counts)
	assert.Equal(t, 3, tallies[voted.ID].Total)
	assert.Equal(t, 2, tallies[voted.ID].Choice)
	assert.True(t, page.IsMarked(voted.ID))

	assert.Equal(t, []int{1, 1}, tallies[other.ID].Counts)
	assert.Equal(t, -1, tallies[other.ID].Choice, "classmates' votes are not the viewer's")
	assert.False(t, page.IsMarked(other.ID))
}

func TestExpiredPollRejectsVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expired := testNow.Add(-time.Hour)
	poll, err := f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Late?", Options: "Yes\nNo", ExpiresAt: &expired})
	require.NoError(t, err)

	_, err = f.svc.Polls.Vote(ctx, f.student, poll, 0)
	assert.ErrorIs(t, err, ErrPollExpired)

	n, err := f.repo.PollVotes.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	page := view.Load(ctx, f.svc.Polls.Descriptor(), f.student, nil, testNow)
	require.Len(t, page.Rows(), 1)
	assert.Equal(t, "EXPIRED", page.Rows()[0].Badges[0].Label)
}

func TestStaffCannotVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	poll, err := f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Q", Options: "A\nB"})
	require.NoError(t, err)
	_, err = f.svc.Polls.Vote(ctx, f.staff, poll, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFeedbackRequiresAllAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form, err := f.svc.Feedback.Create(ctx, f.staff, FeedbackFormInput{Title: "Course", Questions: "Pace?\nMaterial?"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		answers []string
	}{
		{"missing", []string{"Good"}},
		{"blank", []string{"Good", "   "}},
		{"none", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Feedback.Respond(ctx, f.student, form, tt.answers)
			assert.ErrorIs(t, err, ErrIncompleteAnswers)
		})
	}

	n, err := f.repo.FeedbackResponses.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "incomplete answers must not be written")

	_, err = f.svc.Feedback.Respond(ctx, f.student, form, []string{"Good", " Fine "})
	require.NoError(t, err)
	_, err = f.svc.Feedback.Respond(ctx, f.student, form, []string{"Again", "Again"})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	page := view.Load(ctx, f.svc.Feedback.Descriptor(), f.student, nil, testNow)
	require.NoError(t, page.Err)
	assert.Equal(t, "SUBMITTED", page.Rows()[0].Badges[0].Label)
	assert.Equal(t, 1, page.Extra["responses"].(map[string]int)[form.ID])

	page = view.Load(ctx, f.svc.Feedback.Descriptor(), f.staff, nil, testNow)
	require.NoError(t, page.Err)
	assert.False(t, page.IsMarked(form.ID), "only the viewer's own responses mark a form")
	assert.Equal(t, 1, page.Extra["responses"].(map[string]int)[form.ID])
}

func TestFeedbackDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form, err := f.svc.Feedback.Create(ctx, f.staff, FeedbackFormInput{Title: "Course", Questions: "Pace?"})
	require.NoError(t, err)
	_, err = f.svc.Feedback.Respond(ctx, f.student, form, []string{"Good"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Feedback.Delete(ctx, f.staff, form.ID))
	n, err := f.repo.FeedbackResponses.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResourceUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Resources.Create(ctx, f.student, ResourceInput{
		Title:    "Lecture 1",
		Category: "notes",
		File:     &Attachment{Filename: "Lecture One.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.FileURL, "/uploads/resources/"), r.FileURL)
	assert.True(t, strings.HasSuffix(r.FileURL, "_lecture-one.pdf"), r.FileURL)
	assert.Empty(t, r.ThumbnailURL)

	img, err := f.svc.Resources.Create(ctx, f.staff, ResourceInput{
		Title:    "Diagram",
		Category: "notes",
		File:     &Attachment{Filename: "diagram.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes(t, 800, 600))},
	})
	require.NoError(t, err)
	require.NotEmpty(t, img.ThumbnailURL)
	_, err = os.Stat(filepath.Join(f.dir, strings.TrimPrefix(img.ThumbnailURL, "/uploads/")))
	assert.NoError(t, err)
}

func TestResourceInvalidRecordUploadsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Resources.Create(ctx, f.student, ResourceInput{
		Title:    "",
		Category: "notes",
		File:     &Attachment{Filename: "a.pdf", Body: strings.NewReader("x")},
	})
	require.True(t, model.IsValidationError(err), "err = %v", err)

	_, statErr := os.Stat(filepath.Join(f.dir, "resources"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTimetableReuploadUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := TimetableInput{
		Department: "Computer Science",
		Year:       "1st Year",
		File:       &Attachment{Filename: "cs.pdf", ContentType: "application/pdf", Body: strings.NewReader("v1")},
	}
	_, err := f.svc.Timetables.Upload(ctx, f.student, in)
	assert.ErrorIs(t, err, ErrForbidden)

	first, err := f.svc.Timetables.Upload(ctx, f.staff, in)
	require.NoError(t, err)
	assert.Contains(t, first.FileURL, "timetables/computer-science_1st-year_")

	in.File = &Attachment{Filename: "cs.pdf", Body: strings.NewReader("v2")}
	second, err := f.svc.Timetables.Upload(ctx, f.staff, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := f.repo.Timetables.List(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	page := view.Load(ctx, f.svc.Timetables.Descriptor(), f.student,
		url.Values{"department": {"Computer Science"}, "year": {"2nd Year"}}, testNow)
	require.NoError(t, page.Err)
	assert.True(t, page.IsEmpty())
}

func TestTimetableRequiresFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Timetables.Upload(context.Background(), f.staff, TimetableInput{Department: "Civil", Year: "1st Year"})
	assert.ErrorIs(t, err, ErrFileRequired)
}

func TestParseClient(t *testing.T) {
	tests := []struct {
		ua      string
		browser string
		device  string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", "Chrome", "desktop"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "mobile"},
		{"", "Unknown", "desktop"},
	}
	for _, tt := range tests {
		c := ParseClient(tt.ua)
		if c.Browser != tt.browser {
			t.Errorf("ParseClient(%q).Browser = %q; want %q", tt.ua, c.Browser, tt.browser)
		}
		if c.Device != tt.device {
			t.Errorf("ParseClient(%q).Device = %q; want %q", tt.ua, c.Device, tt.device)
		}
	}
}

func TestSessionsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.repo.Users.Get(ctx, f.student.UserID)
	require.NoError(t, err)
	f.svc.Sessions.Record(ctx, u, "127.0.0.1", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")

	page := view.Load(ctx, f.svc.Sessions.Descriptor(), f.staff, nil, testNow)
	require.NoError(t, page.Err)
	require.Len(t, page.Items, 1)
	s := page.Items[0]
	assert.Equal(t, u.Name, s.UserName)
	assert.Equal(t, "127.0.0.1", s.IPAddress)
	assert.Empty(t, s.Country, "no GeoIP database configured")
	assert.False(t, s.LoginTime.IsZero())
}

func TestStaffStatsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Dashboard.Staff(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Students)
	assert.Zero(t, st.PendingComplaints)

	// Writes behind the service's back are not seen until the entry is dropped.
	_, err = f.repo.Complaints.Create(ctx, &model.Complaint{UserID: f.student.UserID, Title: "t", Description: "d", Category: "other", Status: model.StatusPending})
	require.NoError(t, err)
	st, err = f.svc.Dashboard.Staff(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.PendingComplaints)

	f.svc.Dashboard.Invalidate(ctx)
	st, err = f.svc.Dashboard.Staff(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.PendingComplaints)
	assert.Len(t, st.RecentComplaints, 1)
}

func TestStudentStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Complaints.Create(ctx, f.student, ComplaintInput{Title: "Wifi", Description: "Down", Category: "hostel"})
	require.NoError(t, err)
	_, err = f.svc.Announcements.Create(ctx, f.staff, AnnouncementInput{Title: "Hi", Content: "Welcome"})
	require.NoError(t, err)
	_, err = f.svc.Events.Create(ctx, f.staff, EventInput{Title: "Fair", Description: "d", EventDate: testNow.Add(time.Hour), Location: "Quad"})
	require.NoError(t, err)

	st, err := f.svc.Dashboard.Student(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.MyComplaints)
	assert.Equal(t, 1, st.PendingMine)
	assert.Len(t, st.Announcements, 1)
	assert.Len(t, st.UpcomingEvents, 1)
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Profile.Update(ctx, f.staff.UserID, ProfileInput{Name: " Dr. Rao ", Department: "Civil", Year: "1st Year", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", u.Name)
	assert.Empty(t, u.Year, "year is only kept for students")

	_, err = f.svc.Profile.Update(ctx, f.student.UserID, ProfileInput{Name: "S", Department: "Civil"})
	require.True(t, model.IsValidationError(err), "student without year: %v", err)

	_, err = f.svc.Polls.Create(ctx, f.staff, PollInput{Question: "Q", Options: "A\nB"})
	require.NoError(t, err)
	st, err := f.svc.Profile.Stats(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Zero(t, st.PollsVoted)
}
