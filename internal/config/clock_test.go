package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayPakaiTimezoneAplikasi(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	Location = loc

	// 23:30 UTC 29 Agustus = 06:30 WIB 30 Agustus: hari sudah ganti di
	// timezone aplikasi walau UTC belum.
	Now = func() time.Time {
		return time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	}
	t.Cleanup(func() { Now = time.Now })

	assert.Equal(t, "2026-08-30", Today())
	assert.Equal(t, "Asia/Jakarta", NowLocal().Location().String())
}
