package consts

// Tables
const (
	DBVideos = "videos"
)

// Videos
const (
	QVidID          = "id"
	QVidVideoID     = "video_id"
	QVidURL         = "url"
	QVidTitle       = "title"
	QVidDescription = "description"
	QVidThumbURL    = "thumbnail_url"
	QVidThumbPath   = "thumbnail_path"
	QVidDuration    = "duration"
	QVidChannel     = "channel"
	QVidUploadDate  = "upload_date"
	QVidFilePath    = "file_path"
	QVidFileSize    = "file_size"
	QVidStatus      = "download_status"
	QVidProgress    = "download_progress"
	QVidCreatedAt   = "created_at"
	QVidUpdatedAt   = "updated_at"
)
