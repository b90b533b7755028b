package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryHost implements Host on top of the Cloudinary SDK.
type CloudinaryHost struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiKey    string
	apiSecret string
}

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (*CloudinaryHost, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryHost{
		cld:       cld,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}, nil
}

func (h *CloudinaryHost) CloudName() string { return h.cloudName }
func (h *CloudinaryHost) APIKey() string    { return h.apiKey }

func (h *CloudinaryHost) Upload(ctx context.Context, dataURI string, params UploadParams) (*Asset, error) {
	resp, err := h.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		PublicID:       params.PublicID,
		Folder:         params.Folder,
		Overwrite:      api.Bool(params.Overwrite),
		ResourceType:   params.ResourceType,
		Transformation: params.Transformation,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.Message != "" {
		return nil, errors.New(resp.Error.Message)
	}

	return &Asset{
		URL:       resp.SecureURL,
		PublicID:  resp.PublicID,
		Width:     resp.Width,
		Height:    resp.Height,
		Format:    resp.Format,
		Bytes:     resp.Bytes,
		CreatedAt: resp.CreatedAt,
	}, nil
}

func (h *CloudinaryHost) Destroy(ctx context.Context, publicID string) (string, error) {
	resp, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.Result, nil
}

func (h *CloudinaryHost) Search(ctx context.Context, expression string, maxResults int) ([]Asset, error) {
	resp, err := h.cld.Admin.Search(ctx, search.Query{
		Expression: expression,
		SortBy:     []search.SortByField{{"created_at": search.Descending}},
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.Message != "" {
		return nil, errors.New(resp.Error.Message)
	}

	assets := make([]Asset, 0, len(resp.Assets))
	for _, a := range resp.Assets {
		assets = append(assets, Asset{
			URL:       a.SecureURL,
			PublicID:  a.PublicID,
			Width:     a.Width,
			Height:    a.Height,
			Format:    a.Format,
			Bytes:     a.Bytes,
			CreatedAt: a.CreatedAt,
		})
	}
	return assets, nil
}

func (h *CloudinaryHost) URL(publicID string, transformation string) (string, error) {
	img, err := h.cld.Image(publicID)
	if err != nil {
		return "", err
	}
	img.Transformation = transformation
	return img.String()
}

func (h *CloudinaryHost) Sign(params url.Values) (string, error) {
	return api.SignParameters(params, h.apiSecret)
}
