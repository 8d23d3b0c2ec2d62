package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/h2non/filetype"
	"github.com/samber/lo"
)

// Placer writes an uploaded file to its final location and returns where it
// ended up: a path under the upload directory, or a URL.
type Placer interface {
	// Prepare makes sure folder exists before any file is placed in it.
	Prepare(ctx context.Context, folder string) error
	Place(ctx context.Context, src io.Reader, key string) (string, error)
}

// DiskPlacer stores files under a root directory.
type DiskPlacer struct {
	root string
}

func NewDiskPlacer(root string) *DiskPlacer {
	return &DiskPlacer{root: root}
}

func (d *DiskPlacer) Prepare(_ context.Context, folder string) error {
	dir, err := d.fullPath(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	return nil
}

func (d *DiskPlacer) Place(_ context.Context, src io.Reader, key string) (string, error) {
	dst, err := d.fullPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return filepath.ToSlash(dst), nil
}

func (d *DiskPlacer) fullPath(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ierr.NewValidation("invalid upload path")
	}
	return filepath.Join(d.root, cleaned), nil
}

// CloudinaryPlacer sends files to Cloudinary under the upload directory prefix.
type CloudinaryPlacer struct {
	svc    *CloudinaryService
	prefix string
}

func NewCloudinaryPlacer(svc *CloudinaryService, prefix string) *CloudinaryPlacer {
	return &CloudinaryPlacer{svc: svc, prefix: prefix}
}

// Prepare is a no-op: Cloudinary folders are created on first upload.
func (p *CloudinaryPlacer) Prepare(context.Context, string) error { return nil }

func (p *CloudinaryPlacer) Place(ctx context.Context, src io.Reader, key string) (string, error) {
	folder := path.Join(p.prefix, path.Dir(filepath.ToSlash(key)))
	base := path.Base(filepath.ToSlash(key))
	publicID := strings.TrimSuffix(base, path.Ext(base))
	return p.svc.UploadFile(ctx, src, publicID, folder)
}

// UploadOptions are the optional naming fields of an upload request.
type UploadOptions struct {
	FolderName string
	FileName   string
}

// FileOutcome describes what happened to one submitted file.
type FileOutcome struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadResult splits the outcomes of one request.
type UploadResult struct {
	Success []FileOutcome `json:"uploadSuccess"`
	Failed  []FileOutcome `json:"uploadFailed"`
	Total   int           `json:"total"`
}

// Summary is the human readable outcome line.
func (r *UploadResult) Summary() string {
	return fmt.Sprintf("%d out of %d files uploaded successfully", len(r.Success), r.Total)
}

// UploadService filters and places uploaded files, one at a time and in
// submission order. A file that fails never stops the others.
type UploadService struct {
	cfg    config.UploadConfig
	placer Placer
	log    *logger.Logger
	now    func() time.Time
}

func NewUploadService(cfg config.UploadConfig, placer Placer, log *logger.Logger) *UploadService {
	return &UploadService{
		cfg:    cfg,
		placer: placer,
		log:    log.Named("upload"),
		now:    time.Now,
	}
}

// MaxRequestSize is the cap applied to the whole multipart body.
func (s *UploadService) MaxRequestSize() int64 {
	return s.cfg.MaxRequestSizeBytes()
}

// Upload places every file and reports per-file outcomes. Submitting no
// files is a validation error.
func (s *UploadService) Upload(ctx context.Context, files []*multipart.FileHeader, opts UploadOptions) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ierr.NewValidation(`"files" is required`)
	}

	folder, fileName, err := cleanNames(opts)
	if err != nil {
		return nil, err
	}
	if err := s.placer.Prepare(ctx, folder); err != nil {
		return nil, err
	}

	result := &UploadResult{Success: []FileOutcome{}, Failed: []FileOutcome{}, Total: len(files)}
	var lastStamp int64
	for i, fh := range files {
		outcome := FileOutcome{Name: fh.Filename, Size: fh.Size}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))

		switch {
		case !lo.Contains(s.cfg.AllowedExtensions, ext):
			outcome.Error = "filetype not allowed"
		case fh.Size > s.cfg.MaxFileSizeBytes():
			outcome.Error = fmt.Sprintf("file size exceeds the %s limit", s.cfg.MaxFileSize)
		default:
			var key string
			switch {
			case folder != "" && fileName != "":
				key = fmt.Sprintf("%s/%s-%d.%s", folder, fileName, i+1, ext)
			case fileName != "":
				key = fmt.Sprintf("%s-%d.%s", fileName, i+1, ext)
			default:
				// Millisecond names must stay unique within one request.
				stamp := s.now().UnixMilli()
				if stamp <= lastStamp {
					stamp = lastStamp + 1
				}
				lastStamp = stamp
				key = fmt.Sprintf("%d.%s", stamp, ext)
			}
			outcome.Path, outcome.MimeType, err = s.place(ctx, fh, key)
			if err != nil {
				outcome.Error = err.Error()
			}
		}

		if outcome.Error != "" {
			s.log.Warnw("file rejected", "file", fh.Filename, "reason", outcome.Error)
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Success = append(result.Success, outcome)
	}

	s.log.Infow("upload finished", "ok", len(result.Success), "failed", len(result.Failed))
	return result, nil
}

func (s *UploadService) place(ctx context.Context, fh *multipart.FileHeader, key string) (string, string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mime := ""
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}

	location, err := s.placer.Place(ctx, io.MultiReader(bytes.NewReader(head), src), key)
	if err != nil {
		return "", "", err
	}
	return location, mime, nil
}

// cleanNames rejects names that would escape the upload directory.
func cleanNames(opts UploadOptions) (string, string, error) {
	folder := strings.TrimSpace(opts.FolderName)
	if folder != "" {
		folder = filepath.ToSlash(filepath.Clean(folder))
		if strings.HasPrefix(folder, "..") || strings.HasPrefix(folder, "/") {
			return "", "", ierr.NewValidation(`"folderName" is invalid`)
		}
	}
	name := strings.TrimSpace(opts.FileName)
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", "", ierr.NewValidation(`"fileName" is invalid`)
	}
	return folder, name, nil
}
