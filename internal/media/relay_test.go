package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"
)

type fakeHost struct {
	uploads   []UploadParams
	dataURIs  []string
	destroyed []string
	result    string
	searched  string
	max       int
	uploadErr error
}

func (f *fakeHost) Upload(_ context.Context, dataURI string, p UploadParams) (*Asset, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, p)
	f.dataURIs = append(f.dataURIs, dataURI)
	id := p.PublicID
	if id == "" {
		id = fmt.Sprintf("file%d", len(f.uploads))
	}
	return &Asset{
		URL:      "https://media.test/" + p.Folder + "/" + id + ".jpg",
		PublicID: p.Folder + "/" + id,
		Width:    800, Height: 600, Format: "jpg", Bytes: 1234,
	}, nil
}

func (f *fakeHost) Destroy(_ context.Context, publicID string) (string, error) {
	f.destroyed = append(f.destroyed, publicID)
	if f.result == "" {
		return "ok", nil
	}
	return f.result, nil
}

func (f *fakeHost) Search(_ context.Context, expr string, max int) ([]Asset, error) {
	f.searched, f.max = expr, max
	return []Asset{{PublicID: "ecofinds/u1/products/a"}}, nil
}

func (f *fakeHost) URL(publicID, t string) (string, error) {
	return "https://media.test/" + t + "/" + publicID, nil
}

func (f *fakeHost) Sign(params url.Values) (string, error) {
	return "sig:" + params.Encode(), nil
}

func (f *fakeHost) CloudName() string { return "demo" }
func (f *fakeHost) APIKey() string    { return "key" }

func fileHeader(t *testing.T, name, contentType string, size int) *multipart.FileHeader {
	t.Helper()
	return fileHeaders(t, []string{name}, contentType, size)[0]
}

func fileHeaders(t *testing.T, names []string, contentType string, size int) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(bytes.Repeat([]byte("x"), size))
	}
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(64 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"]
}

func newTestRelay(host Host) *Relay {
	return NewRelay(host, Options{RootFolder: "ecofinds", MaxSize: 10 << 20, MaxFiles: 10})
}

func TestImageEndpointsRejectNonImagesBeforeUpload(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()

	for _, ct := range []string{"application/pdf", "text/plain", "", "video/mp4"} {
		fh := fileHeader(t, "file.bin", ct, 10)

		if _, err := relay.UploadImage(ctx, "u1", "", fh); !errors.Is(err, ErrNotImage) {
			t.Errorf("UploadImage(%q) err = %v, want ErrNotImage", ct, err)
		}
		if _, err := relay.UploadAvatar(ctx, "u1", fh); !errors.Is(err, ErrNotImage) {
			t.Errorf("UploadAvatar(%q) err = %v, want ErrNotImage", ct, err)
		}
		if _, err := relay.UploadImages(ctx, "u1", "", []*multipart.FileHeader{fh}); !errors.Is(err, ErrNotImage) {
			t.Errorf("UploadImages(%q) err = %v, want ErrNotImage", ct, err)
		}
	}
	if len(host.uploads) != 0 {
		t.Fatalf("media host called %d times, want 0", len(host.uploads))
	}
}

func TestOversizedFilesRejectedRegardlessOfType(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()
	big := (10 << 20) + 1

	img := fileHeader(t, "big.jpg", "image/jpeg", big)
	if _, err := relay.UploadImage(ctx, "u1", "", img); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("image err = %v, want ErrFileTooLarge", err)
	}

	doc := fileHeader(t, "big.pdf", "application/pdf", big)
	if _, err := relay.UploadDocument(ctx, "u1", "id_card", doc); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("document err = %v, want ErrFileTooLarge", err)
	}
	if !IsValidation(ErrFileTooLarge) {
		t.Error("ErrFileTooLarge should be a validation error")
	}
	if len(host.uploads) != 0 {
		t.Fatalf("media host called %d times, want 0", len(host.uploads))
	}
}

func TestUploadImageSendsDataURIWithListingPreset(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)

	asset, err := relay.UploadImage(context.Background(), "u1", "", fileHeader(t, "chair.png", "image/png", 3))
	if err != nil {
		t.Fatal(err)
	}
	if asset.URL == "" || asset.PublicID == "" {
		t.Fatalf("asset missing url/public id: %+v", asset)
	}

	p := host.uploads[0]
	if p.Folder != "ecofinds/u1/products" {
		t.Errorf("folder = %q", p.Folder)
	}
	if p.Transformation != "c_limit,w_800,h_800/q_auto,f_auto" {
		t.Errorf("transformation = %q", p.Transformation)
	}
	if want := "data:image/png;base64,eHh4"; host.dataURIs[0] != want {
		t.Errorf("data uri = %q, want %q", host.dataURIs[0], want)
	}
}

func TestUploadAvatarOverwritesDeterministicID(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := relay.UploadAvatar(ctx, "u1", fileHeader(t, "me.jpg", "image/jpeg", 5)); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range host.uploads {
		if p.PublicID != "avatar_u1" || !p.Overwrite {
			t.Errorf("avatar params = %+v, want public_id avatar_u1 with overwrite", p)
		}
		if !strings.Contains(p.Transformation, "g_face") || !strings.Contains(p.Transformation, "w_300,h_300") {
			t.Errorf("avatar transformation = %q", p.Transformation)
		}
	}
}

func TestUploadDocumentAcceptsAnyType(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)

	if _, err := relay.UploadDocument(context.Background(), "u1", "", fileHeader(t, "id.pdf", "application/pdf", 10)); err != nil {
		t.Fatal(err)
	}
	p := host.uploads[0]
	if p.ResourceType != "auto" || p.Folder != "ecofinds/u1/documents/other" {
		t.Errorf("document params = %+v", p)
	}

	_, err := relay.UploadDocument(context.Background(), "u1", "selfie", fileHeader(t, "id.pdf", "application/pdf", 10))
	if !errors.Is(err, ErrInvalidDocumentType) {
		t.Errorf("err = %v, want ErrInvalidDocumentType", err)
	}
}

func TestUploadImagesValidatesAllBeforeUploading(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()

	files := append(fileHeaders(t, []string{"a.jpg", "b.jpg"}, "image/jpeg", 4),
		fileHeader(t, "c.txt", "text/plain", 4))
	if _, err := relay.UploadImages(ctx, "u1", "", files); !errors.Is(err, ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}
	if len(host.uploads) != 0 {
		t.Fatalf("uploaded %d files before validation failed", len(host.uploads))
	}

	names := make([]string, 11)
	for i := range names {
		names[i] = fmt.Sprintf("%d.jpg", i)
	}
	if _, err := relay.UploadImages(ctx, "u1", "", fileHeaders(t, names, "image/jpeg", 1)); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("err = %v, want ErrTooManyFiles", err)
	}

	assets, err := relay.UploadImages(ctx, "u1", "listings", fileHeaders(t, names[:3], "image/jpeg", 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 3 || host.uploads[0].Folder != "ecofinds/u1/listings" {
		t.Fatalf("assets = %d, folder = %q", len(assets), host.uploads[0].Folder)
	}
}

func TestUpstreamFailureIsNotValidation(t *testing.T) {
	relay := newTestRelay(&fakeHost{uploadErr: errors.New("cloud down")})

	_, err := relay.UploadImage(context.Background(), "u1", "", fileHeader(t, "a.jpg", "image/jpeg", 1))
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || IsValidation(err) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if !strings.Contains(err.Error(), "cloud down") {
		t.Errorf("upstream message lost: %v", err)
	}
}

func TestFolderSanitising(t *testing.T) {
	relay := newTestRelay(&fakeHost{})
	for _, folder := range []string{"../other", "a b", "x/../../y", "UPPER?"} {
		if _, err := relay.UploadImage(context.Background(), "u1", folder, fileHeader(t, "a.jpg", "image/jpeg", 1)); !errors.Is(err, ErrInvalidFolder) {
			t.Errorf("folder %q err = %v, want ErrInvalidFolder", folder, err)
		}
	}
}

func TestDestroy(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()

	if _, err := relay.Destroy(ctx, "u1", "ecofinds/u2/products/x"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign asset err = %v, want ErrForbidden", err)
	}
	if len(host.destroyed) != 0 {
		t.Errorf("host called for foreign asset: %v", host.destroyed)
	}
	if result, err := relay.Destroy(ctx, "u1", "ecofinds/u1/products/x"); err != nil || result != "ok" {
		t.Errorf("own asset = %q, %v", result, err)
	}

	host.result = "not found"
	result, err := relay.Destroy(ctx, "u1", "ecofinds/u1/products/missing")
	if !errors.Is(err, ErrNotDeleted) || result != "not found" {
		t.Errorf("missing asset = %q, %v; want \"not found\", ErrNotDeleted", result, err)
	}
}

func TestListFilesClampsAndScopes(t *testing.T) {
	host := &fakeHost{}
	relay := newTestRelay(host)
	ctx := context.Background()

	if _, err := relay.ListFiles(ctx, "u1", "", 0); err != nil {
		t.Fatal(err)
	}
	if host.searched != "folder:ecofinds/u1/*" || host.max != 30 {
		t.Errorf("search = %q max %d", host.searched, host.max)
	}

	relay.ListFiles(ctx, "u1", "avatars", 9999)
	if host.searched != `folder="ecofinds/u1/avatars"` || host.max != 500 {
		t.Errorf("search = %q max %d", host.searched, host.max)
	}
}

func TestSignature(t *testing.T) {
	relay := newTestRelay(&fakeHost{})
	relay.now = func() time.Time { return time.Unix(1700000000, 0) }

	signed, err := relay.Signature("u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if signed.Timestamp != 1700000000 || signed.Folder != "ecofinds/u1/products" {
		t.Errorf("signed = %+v", signed)
	}
	if signed.Signature != "sig:folder=ecofinds%2Fu1%2Fproducts&timestamp=1700000000" {
		t.Errorf("signature = %q", signed.Signature)
	}
	if signed.APIKey != "key" || signed.CloudName != "demo" {
		t.Errorf("credentials = %q/%q", signed.APIKey, signed.CloudName)
	}
}

func TestOptimizeURLIsIdempotent(t *testing.T) {
	relay := newTestRelay(&fakeHost{})
	tr := Transform{Width: 300, Height: 300, Crop: "fill"}

	first, err := relay.OptimizeURL("ecofinds/u1/products/a", tr)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := relay.OptimizeURL("ecofinds/u1/products/a", tr)
	if first != second {
		t.Fatalf("urls differ: %q vs %q", first, second)
	}
	if !strings.Contains(first, "c_fill,w_300,h_300,q_auto,f_auto") {
		t.Errorf("url = %q", first)
	}

	if _, err := relay.OptimizeURL("", tr); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("empty id err = %v", err)
	}
	if _, err := relay.OptimizeURL("a", Transform{Crop: "explode"}); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("bad crop err = %v", err)
	}
}
