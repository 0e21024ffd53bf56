package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Presigner is the subset of the S3 presign client used by FileStore.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// FileStore keeps patient file metadata in Postgres and issues presigned
// URLs against the configured bucket. If bucket is empty the feature is
// disabled and every call reports ErrFilesDisabled.
type FileStore struct {
	db        DB
	presigner Presigner
	bucket    string
	ttl       time.Duration
	logger    *logging.Logger
}

// NewFileStore creates a file store.
func NewFileStore(db DB, presigner Presigner, bucket string, ttl time.Duration, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &FileStore{db: db, presigner: presigner, bucket: bucket, ttl: ttl, logger: logger}
}

// Enabled reports whether object storage is configured.
func (s *FileStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.presigner != nil
}

// Upload holds the registered metadata plus the presigned PUT URL the
// client uploads the content to.
type Upload struct {
	File      *File  `json:"file"`
	UploadURL string `json:"upload_url"`
}

const fileColumns = `id, patient_id, file_name, content_type, storage_key, created_at`

// CreateUpload registers a file for a patient and returns a presigned
// upload URL. The metadata row exists before the content does; a client
// that never uploads leaves a dangling row the listing still shows.
func (s *FileStore) CreateUpload(ctx context.Context, patientID uuid.UUID, req *FileUploadRequest) (*Upload, error) {
	if !s.Enabled() {
		return nil, ErrFilesDisabled
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := &File{
		ID:          uuid.New(),
		PatientID:   patientID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	f.StorageKey = fmt.Sprintf("patients/%s/%s/%s", patientID, f.ID, f.FileName)

	_, err := s.db.Exec(ctx, `
		INSERT INTO patient_files (id, patient_id, file_name, content_type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.PatientID, f.FileName, f.ContentType, f.StorageKey, f.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("patients: insert file: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(f.StorageKey),
	}
	if f.ContentType != "" {
		input.ContentType = aws.String(f.ContentType)
	}
	signed, err := s.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = s.ttl
	})
	if err != nil {
		return nil, fmt.Errorf("patients: presign upload: %w", err)
	}

	s.logger.Info("patient file registered", "patient_id", patientID, "file_id", f.ID, "name", f.FileName)
	return &Upload{File: f, UploadURL: signed.URL}, nil
}

// DownloadURL returns a presigned GET URL for a stored file.
func (s *FileStore) DownloadURL(ctx context.Context, patientID, fileID uuid.UUID) (string, error) {
	if !s.Enabled() {
		return "", ErrFilesDisabled
	}

	f, err := s.getFile(ctx, patientID, fileID)
	if err != nil {
		return "", err
	}

	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(f.StorageKey),
	}, func(o *s3.PresignOptions) {
		o.Expires = s.ttl
	})
	if err != nil {
		return "", fmt.Errorf("patients: presign download: %w", err)
	}
	return signed.URL, nil
}

// ListByPatient returns a patient's file metadata, newest first.
func (s *FileStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]File, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+fileColumns+` FROM patient_files
		WHERE patient_id = $1
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("patients: list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.PatientID, &f.FileName, &f.ContentType, &f.StorageKey, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("patients: scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate files: %w", err)
	}
	return files, nil
}

// DeleteFile removes a file's metadata row. The object itself is left to
// the bucket's lifecycle rules.
func (s *FileStore) DeleteFile(ctx context.Context, patientID, fileID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM patient_files WHERE id = $1 AND patient_id = $2`, fileID, patientID)
	if err != nil {
		return fmt.Errorf("patients: delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (s *FileStore) getFile(ctx context.Context, patientID, fileID uuid.UUID) (*File, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+fileColumns+` FROM patient_files
		WHERE id = $1 AND patient_id = $2`, fileID, patientID)

	var f File
	err := row.Scan(&f.ID, &f.PatientID, &f.FileName, &f.ContentType, &f.StorageKey, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get file: %w", err)
	}
	return &f, nil
}
