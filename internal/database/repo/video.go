package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tubevault/internal/domain/consts"
	"tubevault/internal/errs"
	"tubevault/internal/models"
	"tubevault/internal/utils/logging"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

// VideoStore performs video record database operations.
type VideoStore struct {
	DB *sql.DB
}

// GetVideoStore returns a video store instance with injected database.
func GetVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{
		DB: db,
	}
}

// GetDB returns the database.
func (vs *VideoStore) GetDB() *sql.DB {
	return vs.DB
}

// videoColumns is the scan order for full video rows.
var videoColumns = []string{
	consts.QVidID,
	consts.QVidVideoID,
	consts.QVidURL,
	consts.QVidTitle,
	consts.QVidDescription,
	consts.QVidThumbURL,
	consts.QVidThumbPath,
	consts.QVidDuration,
	consts.QVidChannel,
	consts.QVidUploadDate,
	consts.QVidFilePath,
	consts.QVidFileSize,
	consts.QVidStatus,
	consts.QVidProgress,
	consts.QVidCreatedAt,
	consts.QVidUpdatedAt,
}

// AddVideo inserts resolved metadata as a new pending record and returns the
// full stored row, including the generated ID and timestamps.
func (vs *VideoStore) AddVideo(ctx context.Context, meta *models.VideoMetadata) (*models.Video, error) {
	if err := vs.checkOpen(); err != nil {
		return nil, err
	}
	if meta == nil || meta.VideoID == "" {
		return nil, errors.New("video metadata must contain a platform video ID")
	}

	var uploadDate any
	if !meta.UploadDate.IsZero() {
		uploadDate = meta.UploadDate
	}

	now := time.Now()
	query := squirrel.
		Insert(consts.DBVideos).
		Columns(
			consts.QVidVideoID,
			consts.QVidURL,
			consts.QVidTitle,
			consts.QVidDescription,
			consts.QVidThumbURL,
			consts.QVidDuration,
			consts.QVidChannel,
			consts.QVidUploadDate,
			consts.QVidStatus,
			consts.QVidProgress,
			consts.QVidCreatedAt,
			consts.QVidUpdatedAt,
		).
		Values(
			meta.VideoID,
			meta.URL,
			meta.Title,
			meta.Description,
			meta.ThumbnailURL,
			meta.Duration,
			meta.Channel,
			uploadDate,
			consts.DLStatusPending,
			0,
			now,
			now,
		).
		RunWith(vs.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return nil, classifyConstraintErr(err)
	}

	v, hasRow, err := vs.GetVideo(ctx, meta.VideoID)
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return nil, fmt.Errorf("video %q missing immediately after insert", meta.VideoID)
	}

	logging.S("Added video %q (%s)", v.Title, v.VideoID)
	return v, nil
}

// GetVideo retrieves a single record by platform video ID.
func (vs *VideoStore) GetVideo(ctx context.Context, videoID string) (*models.Video, bool, error) {
	if err := vs.checkOpen(); err != nil {
		return nil, false, err
	}

	query := squirrel.
		Select(videoColumns...).
		From(consts.DBVideos).
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB)

	v, err := scanVideo(query.QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetAllVideos returns all records, newest created first.
func (vs *VideoStore) GetAllVideos(ctx context.Context) ([]*models.Video, error) {
	if err := vs.checkOpen(); err != nil {
		return nil, err
	}

	query := squirrel.
		Select(videoColumns...).
		From(consts.DBVideos).
		OrderBy(consts.QVidCreatedAt + " DESC, " + consts.QVidID + " DESC").
		RunWith(vs.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// SearchVideos returns records whose title or channel contains text,
// case-insensitively, newest created first.
func (vs *VideoStore) SearchVideos(ctx context.Context, text string) ([]*models.Video, error) {
	if err := vs.checkOpen(); err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	query := squirrel.
		Select(videoColumns...).
		From(consts.DBVideos).
		Where(squirrel.Or{
			squirrel.Expr("LOWER("+consts.QVidTitle+") LIKE ? ESCAPE '\\'", pattern),
			squirrel.Expr("LOWER("+consts.QVidChannel+") LIKE ? ESCAPE '\\'", pattern),
		}).
		OrderBy(consts.QVidCreatedAt + " DESC, " + consts.QVidID + " DESC").
		RunWith(vs.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// UpdateDownloadStatus writes the status and progress fields unconditionally.
// Transition legality is the caller's responsibility, not the store's.
func (vs *VideoStore) UpdateDownloadStatus(ctx context.Context, videoID string, status consts.DownloadStatus, progress int) error {
	if err := vs.checkOpen(); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("invalid download status %q", status)
	}

	query := squirrel.
		Update(consts.DBVideos).
		Set(consts.QVidStatus, status).
		Set(consts.QVidProgress, progress).
		Set(consts.QVidUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return classifyConstraintErr(err)
	}
	return requireRow(res, videoID)
}

// UpdateDownloadComplete atomically marks a record completed with its file details.
func (vs *VideoStore) UpdateDownloadComplete(ctx context.Context, videoID, filePath string, fileSize int64) error {
	if err := vs.checkOpen(); err != nil {
		return err
	}

	query := squirrel.
		Update(consts.DBVideos).
		Set(consts.QVidStatus, consts.DLStatusCompleted).
		Set(consts.QVidProgress, 100).
		Set(consts.QVidFilePath, filePath).
		Set(consts.QVidFileSize, fileSize).
		Set(consts.QVidUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return classifyConstraintErr(err)
	}
	return requireRow(res, videoID)
}

// UpdateThumbnailPath stores the locally cached thumbnail location.
func (vs *VideoStore) UpdateThumbnailPath(ctx context.Context, videoID, thumbPath string) error {
	if err := vs.checkOpen(); err != nil {
		return err
	}

	query := squirrel.
		Update(consts.DBVideos).
		Set(consts.QVidThumbPath, thumbPath).
		Set(consts.QVidUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return classifyConstraintErr(err)
	}
	return requireRow(res, videoID)
}

// DeleteVideo removes the row. Filesystem cleanup is the caller's
// responsibility, performed before this call if desired.
func (vs *VideoStore) DeleteVideo(ctx context.Context, videoID string) error {
	if err := vs.checkOpen(); err != nil {
		return err
	}

	query := squirrel.
		Delete(consts.DBVideos).
		Where(squirrel.Eq{consts.QVidVideoID: videoID}).
		RunWith(vs.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return err
	}
	if err := requireRow(res, videoID); err != nil {
		return err
	}

	logging.S("Deleted video with ID %q", videoID)
	return nil
}

// ******************************** Private ********************************

func (vs *VideoStore) checkOpen() error {
	if vs == nil || vs.DB == nil {
		return errs.ErrStoreUnavailable
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters so search text matches literally.
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}

// requireRow converts a zero-row write into a not-found error.
func requireRow(res sql.Result, videoID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("video %q: %w", videoID, errs.ErrVideoNotFound)
	}
	return nil
}

// classifyConstraintErr maps sqlite constraint failures onto the error taxonomy.
func classifyConstraintErr(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", errs.ErrDuplicateVideo, err)
		default:
			return fmt.Errorf("%w: %v", errs.ErrIntegrity, err)
		}
	}
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanVideo scans a full video row in videoColumns order.
func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		v          models.Video
		uploadDate sql.NullTime
	)
	if err := row.Scan(
		&v.ID,
		&v.VideoID,
		&v.URL,
		&v.Title,
		&v.Description,
		&v.ThumbnailURL,
		&v.ThumbnailPath,
		&v.Duration,
		&v.Channel,
		&uploadDate,
		&v.FilePath,
		&v.FileSize,
		&v.DownloadStatus,
		&v.DownloadProgress,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if uploadDate.Valid {
		v.UploadDate = uploadDate.Time
	}
	return &v, nil
}

// collectVideos drains rows into video models.
func collectVideos(rows *sql.Rows) ([]*models.Video, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E("Failed to close rows: %v", err)
		}
	}()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
