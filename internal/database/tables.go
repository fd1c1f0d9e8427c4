package database

import (
	"database/sql"
	"fmt"
)

// initVideosTable initializes the videos table.
func initVideosTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS videos (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        video_id TEXT NOT NULL UNIQUE,
        url TEXT NOT NULL,
        title TEXT NOT NULL DEFAULT 'Untitled',
        description TEXT DEFAULT '',
        thumbnail_url TEXT DEFAULT '',
        thumbnail_path TEXT DEFAULT '',
        duration INTEGER DEFAULT 0,
        channel TEXT NOT NULL DEFAULT 'Unknown',
        upload_date TIMESTAMP,
        file_path TEXT DEFAULT '',
        file_size INTEGER DEFAULT 0,
        download_status TEXT NOT NULL DEFAULT 'pending' CHECK(download_status IN ('pending', 'downloading', 'completed', 'failed')),
        download_progress INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_videos_video_id ON videos(video_id);
    CREATE INDEX IF NOT EXISTS idx_videos_title ON videos(title);
    CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(download_status);
    CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create videos table: %w", err)
	}
	return nil
}
