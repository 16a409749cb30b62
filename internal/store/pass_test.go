package store

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/models"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	config.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func samplePass() models.Pass {
	return models.Pass{
		Token:      "abcdef0123456789abcdef0123456789",
		GuardianID: 1001,
		StudentID:  7,
		Purpose:    models.PurposeDropOff,
		IssuedAt:   time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetPass(t *testing.T) {
	mr := setupRedis(t)
	p := samplePass()

	require.NoError(t, SavePass(p))

	got, err := GetPassByToken(p.Token)
	require.NoError(t, err)
	assert.Equal(t, p.Token, got.Token)
	assert.Equal(t, p.GuardianID, got.GuardianID)
	assert.Equal(t, p.StudentID, got.StudentID)
	assert.Equal(t, p.Purpose, got.Purpose)
	assert.False(t, got.Used)

	// TTL 15 menit terpasang di dua key
	assert.Equal(t, models.PassTTL, mr.TTL("pass:token:"+p.Token))
	assert.Equal(t, models.PassTTL, mr.TTL("pass:active:1001:Drop off"))
}

func TestGetPassMissing(t *testing.T) {
	setupRedis(t)

	_, err := GetPassByToken("tidak-ada")
	assert.ErrorIs(t, err, ErrPassNotFound)
}

func TestFindActivePassRestore(t *testing.T) {
	setupRedis(t)
	p := samplePass()
	require.NoError(t, SavePass(p))

	got, err := FindActivePass(p.GuardianID, p.Purpose)
	require.NoError(t, err)
	assert.Equal(t, p.Token, got.Token)

	// Purpose lain tidak ke-restore
	_, err = FindActivePass(p.GuardianID, models.PurposePickUp)
	assert.ErrorIs(t, err, ErrPassNotFound)
}

func TestMarkPassUsed(t *testing.T) {
	setupRedis(t)
	p := samplePass()
	require.NoError(t, SavePass(p))

	require.NoError(t, MarkPassUsed(p.Token))

	got, err := GetPassByToken(p.Token)
	require.NoError(t, err)
	assert.True(t, got.Used)

	// Pass yang sudah used tidak bisa di-restore lagi
	_, err = FindActivePass(p.GuardianID, p.Purpose)
	assert.ErrorIs(t, err, ErrPassNotFound)
}

func TestPassExpiresViaTTL(t *testing.T) {
	mr := setupRedis(t)
	p := samplePass()
	require.NoError(t, SavePass(p))

	// Lewat TTL, Redis drop key-nya sendiri (GC tanpa job terpisah)
	mr.FastForward(models.PassTTL + time.Minute)

	_, err := GetPassByToken(p.Token)
	assert.ErrorIs(t, err, ErrPassNotFound)
}
