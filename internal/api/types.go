package api

import "time"

// ── Users ──────────

// UserProfile holds the public profile attached to a user. Name is the
// canonical display-name field; when empty, callers fall back to the email.
type UserProfile struct {
	UserID    int64   `json:"user_id,omitempty"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type User struct {
	ID        int64        `json:"id"`
	Email     string       `json:"email"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

// DisplayName returns the profile name, falling back to the email address.
func (u User) DisplayName() string {
	if u.Profile != nil && u.Profile.Name != nil && *u.Profile.Name != "" {
		return *u.Profile.Name
	}
	return u.Email
}

type UserCreate struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Profile  *UserProfile `json:"profile,omitempty"`
}

type UserUpdate struct {
	Email   *string      `json:"email,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is shared by POST /users/login and POST /users/refresh.
type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ── Projects ──────────

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectMember struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type ProjectMemberCreate struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type ProjectMemberUpdate struct {
	Role string `json:"role"`
}

type ProjectRepositoryLink struct {
	RepositoryID int64 `json:"repository_id"`
}

// Pin is one entry in a user's ordered pinned-project list.
type Pin struct {
	UserID    int64     `json:"user_id"`
	ProjectID int64     `json:"project_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type PinCreate struct {
	ProjectID int64 `json:"project_id"`
}

type PinReorder struct {
	ProjectIDs []int64 `json:"project_ids"`
}

// ── Repositories ──────────

type Repository struct {
	ID            int64      `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	CapturedAt    *time.Time `json:"captured_at,omitempty"`
	StarsCount    int        `json:"stars_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LatestSession *Session   `json:"latest_session,omitempty"`
}

type RepositoryCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type RepositoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Star struct {
	UserID       int64     `json:"user_id"`
	RepositoryID int64     `json:"repository_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ── Pipeline sessions, datasets, candidates ──────────

// Session is a backend pipeline run over a repository, unrelated to the
// client-side auth session.
type Session struct {
	ID           int64      `json:"id"`
	RepositoryID int64      `json:"repository_id"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type PipelineStep struct {
	ID         int64      `json:"id"`
	SessionID  int64      `json:"session_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Candidate is a detected transit candidate produced by a pipeline session.
type Candidate struct {
	ID         int64    `json:"id"`
	SessionID  int64    `json:"session_id"`
	PeriodDays float64  `json:"period_days"`
	DepthPPM   float64  `json:"depth_ppm"`
	Epoch      float64  `json:"epoch"`
	SNR        float64  `json:"snr"`
	Verified   *bool    `json:"verified,omitempty"`
	TargetName *string  `json:"target_name,omitempty"`
}

type CandidateVerifyUpdate struct {
	Verified bool `json:"verified"`
}

type Dataset struct {
	ID           int64     `json:"id"`
	RepositoryID int64     `json:"repository_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type DatasetCreate struct {
	RepositoryID int64 `json:"repository_id"`
}

type DataItem struct {
	ID        int64     `json:"id"`
	DatasetID int64     `json:"dataset_id"`
	FITSPath  string    `json:"fits_path"`
	ImagePath *string   `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DataItemCreate struct {
	DatasetID int64   `json:"dataset_id"`
	FITSPath  string  `json:"fits_path"`
	ImagePath *string `json:"image_path,omitempty"`
}

// ── Uploads ──────────

// PreprocessCategory tags a calibration frame group.
type PreprocessCategory string

const (
	PreprocessDark PreprocessCategory = "dark"
	PreprocessBias PreprocessCategory = "bias"
	PreprocessFlat PreprocessCategory = "flat"
)

// PreprocessCategories lists the calibration groups in display order.
var PreprocessCategories = []PreprocessCategory{PreprocessDark, PreprocessBias, PreprocessFlat}

// TempUploadItem is an ephemeral staged file record issued by the staging
// endpoint. It exists only between staging and commit/discard.
type TempUploadItem struct {
	TempID      string         `json:"temp_id"`
	Filename    string         `json:"filename"`
	SizeBytes   int64          `json:"size_bytes"`
	ContentType string         `json:"content_type,omitempty"`
	TmpFITSPath string         `json:"tmp_fits_path"`
	TmpPNGPath  *string        `json:"tmp_png_path,omitempty"`
	FITSHeader  map[string]any `json:"fits_header,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// TempPreprocessItem is a staged calibration frame record.
type TempPreprocessItem struct {
	TempID    string             `json:"temp_id"`
	Filename  string             `json:"filename"`
	SizeBytes int64              `json:"size_bytes"`
	Category  PreprocessCategory `json:"category"`
	TempPath  string             `json:"temp_path"`
	Metadata  map[string]any     `json:"metadata_json,omitempty"`
}

type StageUploadsResponse struct {
	Items      []TempUploadItem                            `json:"items"`
	Preprocess map[PreprocessCategory][]TempPreprocessItem `json:"preprocess,omitempty"`
}

type UploadCommitItem struct {
	TempID        string         `json:"temp_id"`
	FITSTempPath  string         `json:"fits_temp_path"`
	ImageTempPath *string        `json:"image_temp_path"`
	FITSData      map[string]any `json:"fits_data_json"`
	Metadata      map[string]any `json:"metadata_json"`
}

type UploadPreprocessCommitItem struct {
	TempID       string             `json:"temp_id"`
	Category     PreprocessCategory `json:"category"`
	TempPath     string             `json:"temp_path"`
	OriginalName string             `json:"original_name"`
	Metadata     map[string]any     `json:"metadata_json"`
}

// UploadCommitRequest atomically converts staged items into a permanent
// repository with its dataset, data rows, and an initial pipeline session.
type UploadCommitRequest struct {
	UserID                int64                        `json:"user_id"`
	RepositoryName        string                       `json:"repository_name"`
	RepositoryDescription *string                      `json:"repository_description"`
	CapturedAt            time.Time                    `json:"captured_at"`
	Items                 []UploadCommitItem           `json:"items"`
	PreprocessItems       []UploadPreprocessCommitItem `json:"preprocess_items,omitempty"`
}

type UploadCommitResponse struct {
	RepositoryID   int64  `json:"repository_id"`
	DatasetID      int64  `json:"dataset_id"`
	SessionID      int64  `json:"session_id"`
	CommittedCount int    `json:"committed_count"`
	Message        string `json:"message,omitempty"`
}

// ── Community ──────────

type PostCategory string

const (
	CategoryAnnouncements  PostCategory = "announcements"
	CategoryShowcase       PostCategory = "project-showcase"
	CategoryGallery        PostCategory = "astrophoto-gallery"
	CategoryHallOfFame     PostCategory = "upload-hall-of-fame"
)

// PostCategories lists known community categories in display order.
var PostCategories = []PostCategory{
	CategoryAnnouncements, CategoryShowcase, CategoryGallery, CategoryHallOfFame,
}

type UserSummary struct {
	ID          int64   `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type Comment struct {
	ID        int64       `json:"id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Author    UserSummary `json:"author"`
}

type CommentCreate struct {
	Content string `json:"content"`
}

type Post struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	Category      PostCategory `json:"category"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Author        UserSummary  `json:"author"`
	LikesCount    int          `json:"likes_count"`
	Liked         bool         `json:"liked"`
	Comments      []Comment    `json:"comments"`
	LinkedProject *Project     `json:"linked_project"`
	CanDelete     bool         `json:"can_delete,omitempty"`
}

type PostCreate struct {
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	Category        PostCategory `json:"category"`
	LinkedProjectID *int64       `json:"linked_project_id,omitempty"`
}

// LikeStatus is the authoritative like state returned by like/unlike.
type LikeStatus struct {
	PostID     int64 `json:"post_id"`
	Liked      bool  `json:"liked"`
	LikesCount int   `json:"likes_count"`
}

// ── Stats ──────────

type UserStats struct {
	UserID          int64 `json:"user_id"`
	UploadsCount    int   `json:"uploads_count"`
	ProjectsCount   int   `json:"projects_count"`
	CandidatesCount int   `json:"candidates_count"`
	StarsReceived   int   `json:"stars_received"`
}

type ContributionBucket struct {
	Date  string `json:"date"` // yyyy-mm-dd
	Count int    `json:"count"`
}

type ContributionSkyPoint struct {
	RA    float64 `json:"ra"`
	Dec   float64 `json:"dec"`
	Count int     `json:"count"`
}

type Contributions struct {
	UserID    int64                  `json:"user_id"`
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Total     int                    `json:"total"`
	Buckets   []ContributionBucket   `json:"buckets"`
	SkyPoints []ContributionSkyPoint `json:"sky_points,omitempty"`
}

// Health is the backend liveness payload; key set varies by deployment.
type Health map[string]any
