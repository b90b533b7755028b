package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoFile              = errors.New("no file uploaded")
	ErrNotImage            = errors.New("only image files are allowed")
	ErrFileTooLarge        = errors.New("file too large")
	ErrTooManyFiles        = errors.New("too many files")
	ErrInvalidFolder       = errors.New("invalid folder")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrInvalidTransform    = errors.New("invalid transformation")
	ErrForbidden           = errors.New("asset does not belong to you")
	ErrNotDeleted          = errors.New("failed to delete asset")
)

// UpstreamError wraps any failure reported by the media host.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// IsValidation reports whether err was raised before contacting the media host.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNoFile, ErrNotImage, ErrFileTooLarge, ErrTooManyFiles,
		ErrInvalidFolder, ErrInvalidDocumentType, ErrInvalidTransform,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

const (
	listingTransformation = "c_limit,w_800,h_800/q_auto,f_auto"
	avatarTransformation  = "c_fill,g_face,w_300,h_300/q_auto,f_auto"

	defaultImageFolder = "products"
	defaultMaxResults  = 30
	maxMaxResults      = 500
)

// DocumentTypes accepted by UploadDocument.
var DocumentTypes = []string{"id_card", "address_proof", "business_license", "other"}

type Options struct {
	RootFolder string
	MaxSize    int64
	MaxFiles   int
}

// Relay validates uploads and forwards them to a Host.
type Relay struct {
	host     Host
	root     string
	maxSize  int64
	maxFiles int
	now      func() time.Time
}

func NewRelay(host Host, opts Options) *Relay {
	if opts.RootFolder == "" {
		opts.RootFolder = "ecofinds"
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 10 << 20
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 10
	}
	return &Relay{
		host:     host,
		root:     strings.Trim(opts.RootFolder, "/"),
		maxSize:  opts.MaxSize,
		maxFiles: opts.MaxFiles,
		now:      time.Now,
	}
}

func (r *Relay) MaxSize() int64 { return r.maxSize }
func (r *Relay) MaxFiles() int  { return r.maxFiles }

// Namespace is the folder all of a user's assets live under.
func (r *Relay) Namespace(userID string) string {
	return r.root + "/" + userID
}

func (r *Relay) checkSize(fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrNoFile
	}
	if fh.Size > r.maxSize {
		return fmt.Errorf("%w: %s exceeds %d MB", ErrFileTooLarge, fh.Filename, r.maxSize>>20)
	}
	return nil
}

// CheckImage enforces the size cap and an image/* declared MIME type.
func (r *Relay) CheckImage(fh *multipart.FileHeader) error {
	if err := r.checkSize(fh); err != nil {
		return err
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, fh.Filename)
	}
	return nil
}

// DataURI reads the whole file and embeds it as base64.
func DataURI(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func (r *Relay) send(ctx context.Context, op string, fh *multipart.FileHeader, params UploadParams) (*Asset, error) {
	uri, err := DataURI(fh)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	asset, err := r.host.Upload(ctx, uri, params)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	return asset, nil
}

// UploadImage stores one listing photo bounded to 800x800.
func (r *Relay) UploadImage(ctx context.Context, userID, folder string, fh *multipart.FileHeader) (*Asset, error) {
	if err := r.CheckImage(fh); err != nil {
		return nil, err
	}
	dir, err := r.imageFolder(userID, folder)
	if err != nil {
		return nil, err
	}
	return r.send(ctx, "upload image", fh, UploadParams{
		Folder:         dir,
		ResourceType:   "image",
		Transformation: listingTransformation,
	})
}

// UploadImages validates every file before uploading any of them.
func (r *Relay) UploadImages(ctx context.Context, userID, folder string, files []*multipart.FileHeader) ([]Asset, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	if len(files) > r.maxFiles {
		return nil, fmt.Errorf("%w: at most %d images per upload", ErrTooManyFiles, r.maxFiles)
	}
	for _, fh := range files {
		if err := r.CheckImage(fh); err != nil {
			return nil, err
		}
	}
	dir, err := r.imageFolder(userID, folder)
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(files))
	for _, fh := range files {
		asset, err := r.send(ctx, "upload images", fh, UploadParams{
			Folder:         dir,
			ResourceType:   "image",
			Transformation: listingTransformation,
		})
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, nil
}

// UploadAvatar overwrites the user's single avatar asset.
func (r *Relay) UploadAvatar(ctx context.Context, userID string, fh *multipart.FileHeader) (*Asset, error) {
	if err := r.CheckImage(fh); err != nil {
		return nil, err
	}
	return r.send(ctx, "upload avatar", fh, UploadParams{
		PublicID:       "avatar_" + userID,
		Folder:         r.Namespace(userID) + "/avatars",
		Overwrite:      true,
		ResourceType:   "image",
		Transformation: avatarTransformation,
	})
}

// UploadDocument accepts any file type for account verification.
func (r *Relay) UploadDocument(ctx context.Context, userID, docType string, fh *multipart.FileHeader) (*Asset, error) {
	if err := r.checkSize(fh); err != nil {
		return nil, err
	}
	if docType == "" {
		docType = "other"
	}
	if !isDocumentType(docType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentType, docType)
	}
	return r.send(ctx, "upload document", fh, UploadParams{
		Folder:       r.Namespace(userID) + "/documents/" + docType,
		ResourceType: "auto",
	})
}

// Destroy deletes an asset inside the caller's namespace and returns the
// host's result string as reported.
func (r *Relay) Destroy(ctx context.Context, userID, publicID string) (string, error) {
	if !strings.HasPrefix(publicID, r.Namespace(userID)+"/") {
		return "", ErrForbidden
	}
	result, err := r.host.Destroy(ctx, publicID)
	if err != nil {
		return "", &UpstreamError{Op: "delete image", Err: err}
	}
	if result != "ok" {
		return result, fmt.Errorf("%w: %s", ErrNotDeleted, result)
	}
	return result, nil
}

// ListFiles returns the caller's assets, newest first.
func (r *Relay) ListFiles(ctx context.Context, userID, folder string, maxResults int) ([]Asset, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	expression := "folder:" + r.Namespace(userID) + "/*"
	if folder != "" {
		sub, err := cleanFolder(folder)
		if err != nil {
			return nil, err
		}
		expression = fmt.Sprintf("folder=%q", r.Namespace(userID)+"/"+sub)
	}

	assets, err := r.host.Search(ctx, expression, maxResults)
	if err != nil {
		return nil, &UpstreamError{Op: "list files", Err: err}
	}
	return assets, nil
}

// SignedUpload lets a client post directly to the media host.
type SignedUpload struct {
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
	Signature string `json:"signature"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
}

func (r *Relay) Signature(userID, folder string) (*SignedUpload, error) {
	dir, err := r.imageFolder(userID, folder)
	if err != nil {
		return nil, err
	}
	ts := r.now().Unix()
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(ts, 10))
	params.Set("folder", dir)

	sig, err := r.host.Sign(params)
	if err != nil {
		return nil, &UpstreamError{Op: "sign upload", Err: err}
	}
	return &SignedUpload{
		Timestamp: ts,
		Folder:    dir,
		Signature: sig,
		APIKey:    r.host.APIKey(),
		CloudName: r.host.CloudName(),
	}, nil
}

// OptimizeURL builds a delivery URL; equal inputs give equal URLs.
func (r *Relay) OptimizeURL(publicID string, t Transform) (string, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return "", fmt.Errorf("%w: public_id is required", ErrInvalidTransform)
	}
	if err := t.validate(); err != nil {
		return "", err
	}
	u, err := r.host.URL(publicID, t.String())
	if err != nil {
		return "", &UpstreamError{Op: "optimize url", Err: err}
	}
	return u, nil
}

func (r *Relay) imageFolder(userID, folder string) (string, error) {
	if folder == "" {
		folder = defaultImageFolder
	}
	sub, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}
	return r.Namespace(userID) + "/" + sub, nil
}

// cleanFolder accepts slash-separated segments of [a-z0-9_-].
func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.ToLower(strings.TrimSpace(folder)), "/")
	if folder == "" {
		return "", ErrInvalidFolder
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
		}
		for _, ch := range seg {
			ok := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
			}
		}
	}
	return folder, nil
}

func isDocumentType(s string) bool {
	for _, t := range DocumentTypes {
		if t == s {
			return true
		}
	}
	return false
}
