// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package unlock implements the per-session page unlock state machine.

Each page of a book is gated by its own shared-secret password. A session
starts with every page locked; a successful password match moves that page
to unlocked for the remainder of the session. There is no reverse
transition, no lockout, and no attempt counting: the gate is a content
seal, not an account credential.

The unlock set is client-held state: it is never persisted server-side and
lives exactly as long as the session that owns it.
*/
package unlock

import (
	"errors"
	"strings"

	"github.com/mkowalczyk/grimoire/internal/catalog"
)

// Direction selects the navigation target relative to the current page.
type Direction int

const (
	// Forward navigates to the next page in display order.
	Forward Direction = iota
	// Backward navigates to the previous page in display order.
	Backward
)

var (
	// ErrNoAdjacentPage is returned when navigation runs off either end of
	// the book's page sequence.
	ErrNoAdjacentPage = errors.New("unlock: no adjacent page in that direction")

	// ErrPageLocked is returned when the target page is locked and the
	// supplied password does not open it. The navigation is aborted and the
	// current page stays active.
	ErrPageLocked = errors.New("unlock: page is locked")
)

// Session tracks which pages a single client has unlocked, per book slug.
//
// # Concurrency
//
// A session belongs to one client and is driven by one interaction at a
// time; it is not safe for concurrent use.
type Session struct {
	unlocked map[string]map[string]struct{}
}

// NewSession creates an empty session: every page starts Locked.
func NewSession() *Session {
	return &Session{unlocked: make(map[string]map[string]struct{})}
}

// IsUnlocked reports whether the page has been unlocked in this session.
func (session *Session) IsUnlocked(bookSlug, pageID string) bool {
	pages, ok := session.unlocked[bookSlug]
	if !ok {
		return false
	}
	_, ok = pages[pageID]
	return ok
}

// TryUnlock attempts the Locked → Unlocked transition for a page.
//
// The candidate password is trimmed of surrounding whitespace and must
// exactly equal the page's stored password. On success the page id joins
// the book's unlocked set and true is returned; on failure the state is
// unchanged. An empty or unknown page id resolves to the book's first
// page, matching how a book opens on its first page by default.
func (session *Session) TryUnlock(book *catalog.Book, pageID, candidate string) bool {
	page := book.Page(pageID)
	if page == nil {
		return false
	}

	if strings.TrimSpace(candidate) != page.Password {
		return false
	}

	pages, ok := session.unlocked[book.Slug]
	if !ok {
		pages = make(map[string]struct{})
		session.unlocked[book.Slug] = pages
	}
	pages[page.ID] = struct{}{}
	return true
}

// Navigate resolves the page adjacent to currentID and gates the move on
// its unlock state.
//
// An already-unlocked target is returned immediately. A locked target is
// first offered the supplied password: success unlocks it and completes
// the navigation; failure returns [ErrPageLocked] and leaves both the
// session state and the caller's current page untouched.
func (session *Session) Navigate(book *catalog.Book, currentID string, direction Direction, password string) (*catalog.Page, error) {
	var target *catalog.Page
	switch direction {
	case Backward:
		target = book.PrevPage(currentID)
	default:
		target = book.NextPage(currentID)
	}

	if target == nil {
		return nil, ErrNoAdjacentPage
	}

	if session.IsUnlocked(book.Slug, target.ID) {
		return target, nil
	}

	if !session.TryUnlock(book, target.ID, password) {
		return nil, ErrPageLocked
	}

	return target, nil
}

// UnlockedPages returns the ids of every unlocked page of a book, in the
// book's display order.
func (session *Session) UnlockedPages(book *catalog.Book) []string {
	pages, ok := session.unlocked[book.Slug]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(pages))
	for i := range book.Pages {
		if _, unlocked := pages[book.Pages[i].ID]; unlocked {
			ids = append(ids, book.Pages[i].ID)
		}
	}
	return ids
}
