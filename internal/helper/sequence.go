package helper

import (
	"backend-penjemputan/internal/config"
	"fmt"
)

// Floor per jenis counter. Key yang belum ada dibuat mulai dari floor-nya.
// Key yang scoped per tahun (student_id_2026) otomatis reset karena key-nya
// sendiri ganti tiap tahun.
const (
	FloorDefault = 1
	FloorTeacher = 2
	FloorParent  = 1000
)

// NextSequence increment-and-fetch counter di Redis. SETNX memasang floor-1
// hanya kalau key belum ada, lalu INCR — dua-duanya atomic, jadi dua caller
// concurrent untuk key baru tidak mungkin dapat angka yang sama.
// Error di sini fatal untuk create operation pemanggil: tidak ada fallback,
// ID duplikat lebih buruk daripada request gagal.
func NextSequence(counterKey string, floor int64) (int64, error) {
	key := fmt.Sprintf("seq:%s", counterKey)

	if err := config.Redis.SetNX(config.Ctx, key, floor-1, 0).Err(); err != nil {
		return 0, fmt.Errorf("setnx %s: %w", key, err)
	}

	val, err := config.Redis.Incr(config.Ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}

	return val, nil
}
