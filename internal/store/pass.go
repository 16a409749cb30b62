package store

import (
	"backend-penjemputan/internal/config"
	"encoding/json"
	"errors"
	"fmt"

	"backend-penjemputan/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrPassNotFound = errors.New("pass tidak ditemukan")

// Pass disimpan di Redis dengan TTL 15 menit: 10 menit window validitas +
// grace, jadi token kadaluarsa hilang sendiri tanpa job GC. Dua key per
// pass: by-token untuk scan gerbang, by-{guardian,purpose} untuk restore
// idempotent.

func tokenKey(token string) string {
	return fmt.Sprintf("pass:token:%s", token)
}

func activeKey(guardianID int64, purpose string) string {
	return fmt.Sprintf("pass:active:%d:%s", guardianID, purpose)
}

// SavePass persist pass baru dengan TTL.
func SavePass(p models.Pass) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	if err := config.Redis.Set(config.Ctx, tokenKey(p.Token), raw, models.PassTTL).Err(); err != nil {
		return fmt.Errorf("set pass: %w", err)
	}
	if err := config.Redis.Set(config.Ctx, activeKey(p.GuardianID, p.Purpose), p.Token, models.PassTTL).Err(); err != nil {
		return fmt.Errorf("set active pass: %w", err)
	}
	return nil
}

// GetPassByToken read-only lookup; scan/preview tidak boleh mutasi apa pun.
func GetPassByToken(token string) (models.Pass, error) {
	var p models.Pass

	raw, err := config.Redis.Get(config.Ctx, tokenKey(token)).Bytes()
	if err == redis.Nil {
		return p, ErrPassNotFound
	}
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	return p, nil
}

// FindActivePass cari pass {guardian, purpose} yang belum used untuk
// restore idempotent. Tidak ketemu = ErrPassNotFound.
func FindActivePass(guardianID int64, purpose string) (models.Pass, error) {
	token, err := config.Redis.Get(config.Ctx, activeKey(guardianID, purpose)).Result()
	if err == redis.Nil {
		return models.Pass{}, ErrPassNotFound
	}
	if err != nil {
		return models.Pass{}, err
	}

	p, err := GetPassByToken(token)
	if err != nil {
		return models.Pass{}, err
	}
	if p.Used {
		return models.Pass{}, ErrPassNotFound
	}
	return p, nil
}

// MarkPassUsed flip used false->true. Dipanggil hanya setelah insert
// transfer sukses, jadi commit gagal tidak pernah membakar pass.
// KeepTTL: sisa umur key tidak di-reset.
func MarkPassUsed(token string) error {
	p, err := GetPassByToken(token)
	if err != nil {
		return err
	}

	p.Used = true
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	if err := config.Redis.Set(config.Ctx, tokenKey(token), raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("mark used: %w", err)
	}

	// Active key dihapus supaya issue berikutnya mint token baru.
	if err := config.Redis.Del(config.Ctx, activeKey(p.GuardianID, p.Purpose)).Err(); err != nil {
		return fmt.Errorf("del active: %w", err)
	}
	return nil
}
