package config

import (
	"log"
	"time"
)

// Semua aturan "hari ini" (duplicate check transfer, pass window, reset
// status harian) pakai timezone dari APP_TIMEZONE, bukan time.Now() lokal.
// Now bisa di-override di test untuk fixed clock.

var (
	Location *time.Location
	Now      = time.Now
)

func InitClock() {
	tz := GetEnv("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatal("APP_TIMEZONE tidak valid:", err)
	}
	Location = loc
	log.Println("Clock timezone:", tz)
}

// NowLocal return waktu sekarang di timezone aplikasi.
func NowLocal() time.Time {
	if Location == nil {
		return Now()
	}
	return Now().In(Location)
}

// Today return tanggal hari ini format YYYY-MM-DD di timezone aplikasi.
func Today() string {
	return NowLocal().Format("2006-01-02")
}
