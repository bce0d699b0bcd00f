// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package unlock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/grimoire/internal/catalog"
	"github.com/mkowalczyk/grimoire/internal/unlock"
)

func gatedBook() *catalog.Book {
	return &catalog.Book{
		Slug: "necronomicon",
		Name: "Necronomicon",
		Pages: []catalog.Page{
			{ID: "intro", Title: "Intro", Src: "/uploads/intro.html", Password: "open"},
			{ID: "middle", Title: "Middle", Src: "/uploads/middle.pdf", Password: "deeper"},
			{ID: "end", Title: "End", Src: "/uploads/end.html", Password: "last"},
		},
	}
}

/*
TestTryUnlock covers the password comparison, trim semantics, and the
one-way nature of the transition.
*/
func TestTryUnlock(t *testing.T) {
	book := gatedBook()
	session := unlock.NewSession()

	assert.False(t, session.IsUnlocked(book.Slug, "intro"))

	// Wrong password leaves the page locked, however often it is tried.
	assert.False(t, session.TryUnlock(book, "intro", "wrong"))
	assert.False(t, session.TryUnlock(book, "intro", "OPEN"))
	assert.False(t, session.IsUnlocked(book.Slug, "intro"))

	// Surrounding whitespace on the candidate is forgiven.
	assert.True(t, session.TryUnlock(book, "intro", "  open  "))
	assert.True(t, session.IsUnlocked(book.Slug, "intro"))

	// A later failed attempt does not re-lock anything.
	assert.False(t, session.TryUnlock(book, "intro", "wrong"))
	assert.True(t, session.IsUnlocked(book.Slug, "intro"))
}

/*
TestTryUnlock_FirstPageFallback checks that an empty or unknown page id
targets the book's first page.
*/
func TestTryUnlock_FirstPageFallback(t *testing.T) {
	book := gatedBook()
	session := unlock.NewSession()

	assert.True(t, session.TryUnlock(book, "", "open"))
	assert.True(t, session.IsUnlocked(book.Slug, "intro"))

	session = unlock.NewSession()
	assert.True(t, session.TryUnlock(book, "no-such-page", "open"))
	assert.True(t, session.IsUnlocked(book.Slug, "intro"))

	empty := &catalog.Book{Slug: "empty", Name: "Empty"}
	assert.False(t, session.TryUnlock(empty, "", "anything"))
}

/*
TestUnlockIsolation checks that unlock state is scoped per book and per
session.
*/
func TestUnlockIsolation(t *testing.T) {
	book := gatedBook()
	other := gatedBook()
	other.Slug = "grimoire-two"

	session := unlock.NewSession()
	require.True(t, session.TryUnlock(book, "middle", "deeper"))

	assert.False(t, session.IsUnlocked(other.Slug, "middle"))
	assert.False(t, unlock.NewSession().IsUnlocked(book.Slug, "middle"))
}

/*
TestNavigate covers gated moves in both directions, the abort on a wrong
password, and running off the ends of the sequence.
*/
func TestNavigate(t *testing.T) {
	book := gatedBook()
	session := unlock.NewSession()

	// A locked target with the wrong password aborts the move.
	_, err := session.Navigate(book, "intro", unlock.Forward, "wrong")
	assert.ErrorIs(t, err, unlock.ErrPageLocked)
	assert.False(t, session.IsUnlocked(book.Slug, "middle"))

	// The right password unlocks and completes the move in one step.
	page, err := session.Navigate(book, "intro", unlock.Forward, "deeper")
	require.NoError(t, err)
	assert.Equal(t, "middle", page.ID)
	assert.True(t, session.IsUnlocked(book.Slug, "middle"))

	// Once unlocked, the password no longer matters.
	page, err = session.Navigate(book, "end", unlock.Backward, "")
	require.NoError(t, err)
	assert.Equal(t, "middle", page.ID)

	// Off either end of the sequence there is nothing to navigate to.
	_, err = session.Navigate(book, "end", unlock.Forward, "whatever")
	assert.ErrorIs(t, err, unlock.ErrNoAdjacentPage)
	_, err = session.Navigate(book, "intro", unlock.Backward, "whatever")
	assert.ErrorIs(t, err, unlock.ErrNoAdjacentPage)
}

/*
TestUnlockedPages checks that the listing follows the book's display
order, not unlock order.
*/
func TestUnlockedPages(t *testing.T) {
	book := gatedBook()
	session := unlock.NewSession()

	assert.Empty(t, session.UnlockedPages(book))

	require.True(t, session.TryUnlock(book, "end", "last"))
	require.True(t, session.TryUnlock(book, "intro", "open"))

	assert.Equal(t, []string{"intro", "end"}, session.UnlockedPages(book))
}
