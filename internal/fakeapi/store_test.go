package fakeapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citycare/internal/domain"
)

func TestStoreOrderingAndFilters(t *testing.T) {
	t.Parallel()

	s := NewStore()
	u, err := s.CreateUser("A", "a@example.com", "h", false)
	require.NoError(t, err)
	other, err := s.CreateUser("B", "b@example.com", "h", false)
	require.NoError(t, err)

	first := s.CreateIssue(u.ID, "one", "Road", "x", "d")
	second := s.CreateIssue(u.ID, "two", "Road", "x", "d")
	s.CreateIssue(other.ID, "three", "Road", "x", "d")

	mine := s.Issues(u.ID, "")
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, old, err := s.SetIssueStatus(first.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, old)
	resolved := s.Issues(0, domain.StatusResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, first.ID, resolved[0].ID)

	_, _, err = s.SetIssueStatus(999, domain.StatusResolved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUsers(t *testing.T) {
	t.Parallel()

	s := NewStore()
	u, err := s.CreateUser("A", "A@Example.com", "h", false)
	require.NoError(t, err)
	_, err = s.CreateUser("A2", "a@example.com", "h", false)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.UserByEmail("a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	b, err := s.CreateUser("B", "b@example.com", "h", false)
	require.NoError(t, err)
	taken := "a@example.com"
	_, err = s.UpdateUser(b.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	fresh := "new@example.com"
	_, err = s.UpdateUser(u.ID, UserUpdate{Email: &fresh})
	require.NoError(t, err)
	_, err = s.UserByEmail("a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreNotificationVisibility(t *testing.T) {
	t.Parallel()

	s := NewStore()
	alice, bob := int64(10), int64(11)
	s.CreateNotification("global", "all", nil)
	s.CreateNotification("alice", "hi", &alice)
	s.CreateNotification("bob", "hi", &bob)

	forAlice := s.Notifications(alice)
	require.Len(t, forAlice, 2)
	assert.Equal(t, "alice", forAlice[0].Title)
	assert.Equal(t, "global", forAlice[1].Title)
	assert.True(t, forAlice[1].IsGlobal())

	assert.Len(t, s.Notifications(0), 3)
}

func TestTokenManager(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 5, 10)
	pair, err := tm.IssuePair(7)
	require.NoError(t, err)

	claims, err := tm.Parse(pair.Access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	_, err = tm.Parse(pair.Access, TokenTypeRefresh)
	assert.Error(t, err)

	require.NoError(t, tm.Revoke(pair.Refresh))
	_, err = tm.Parse(pair.Refresh, TokenTypeRefresh)
	assert.ErrorIs(t, err, errRevoked)
	assert.Error(t, tm.Revoke(pair.Refresh))

	other := NewTokenManager("other", 5, 10)
	_, err = other.Parse(pair.Access, TokenTypeAccess)
	assert.Error(t, err)
}

func TestStatusTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Resolved", statusTitle(domain.StatusResolved))
	assert.Equal(t, "In_Progress", statusTitle(domain.StatusInProgress))
}
