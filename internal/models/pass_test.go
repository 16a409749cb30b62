package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPassExpired(t *testing.T) {
	issued := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	p := Pass{IssuedAt: issued}

	assert.False(t, p.Expired(issued))
	assert.False(t, p.Expired(issued.Add(10*time.Minute)))
	assert.True(t, p.Expired(issued.Add(10*time.Minute+time.Second)))
}
