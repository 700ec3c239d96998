package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginAndGet(t *testing.T) {
	s := New()

	_, ok := s.Get("1")
	require.False(t, ok, "no enrollment before Begin")

	s.Begin("1", "SECRETA")
	p, ok := s.Get("1")
	require.True(t, ok)
	require.Equal(t, "SECRETA", p.Secret)
	require.Zero(t, p.Attempts)
	require.False(t, p.IssuedAt.IsZero())
}

func TestBegin_OverwritesAndResetsAttempts(t *testing.T) {
	s := New()
	s.Begin("1", "FIRST")
	s.Fail("1")
	require.Equal(t, 2, s.Fail("1"))

	s.Begin("1", "SECOND")
	p, ok := s.Get("1")
	require.True(t, ok)
	require.Equal(t, "SECOND", p.Secret)
	require.Zero(t, p.Attempts, "re-initiating resets the attempt count")
}

func TestFail(t *testing.T) {
	s := New()
	require.Zero(t, s.Fail("ghost"), "counting against a missing enrollment is a no-op")

	s.Begin("1", "SECRET")
	require.Equal(t, 1, s.Fail("1"))
	require.Equal(t, 2, s.Fail("1"))

	p, _ := s.Get("1")
	require.Equal(t, 2, p.Attempts)
}

func TestRemove(t *testing.T) {
	s := New()
	s.Begin("1", "SECRET")
	s.Remove("1")

	_, ok := s.Get("1")
	require.False(t, ok)

	s.Remove("1") // removing twice is fine
}
