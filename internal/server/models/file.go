// Package models defines server-side data models persisted in the database.
package models

import (
	"io"
	"time"
)

// File describes one stored upload. The content itself lives in the blob
// store under StoredName.
type File struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
	// StoredName is the blob store key, unique across all users.
	StoredName string `db:"stored_name"`
	// OriginalName is the client-supplied name, used for downloads only.
	OriginalName string    `db:"original_name"`
	SizeBytes    int64     `db:"size_bytes"`
	CreatedAt    time.Time `db:"created_at"`
}

// Download is an open blob plus the metadata needed to serve it. The caller
// must close Content.
type Download struct {
	Content      io.ReadCloser
	OriginalName string
	SizeBytes    int64
}
