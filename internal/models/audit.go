package models

import "time"

// Append-only, satu baris per aksi privileged. Tidak pernah di-update.
type Audit struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}
