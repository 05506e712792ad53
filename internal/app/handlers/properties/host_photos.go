package properties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/infra/storage/s3"
)

const uploadPropertyPhotoKey = "host.properties.photos.upload"

type UploadPropertyPhotoCommand struct {
	HostID      string
	PropertyID  string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadPropertyPhotoCommand) Key() string { return uploadPropertyPhotoKey }

type UploadPropertyPhotoHandler struct {
	Logger   *slog.Logger
	Uploader s3.Uploader
	Now      func() time.Time
}

func (h *UploadPropertyPhotoHandler) Handle(ctx context.Context, cmd UploadPropertyPhotoCommand) (*dto.PhotoUploadResult, error) {
	if h.Uploader == nil {
		return nil, errors.New("photo uploader unavailable")
	}
	if cmd.Reader == nil {
		return nil, errors.New("photo reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("object key is required")
	}

	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := prop.AttachPhoto(publicURL, now); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("property photo added", "property_id", prop.ID, "host_id", cmd.HostID, "object_key", cmd.ObjectKey)
	}

	result := dto.PhotoUploadResult{
		PropertyID:   cmd.PropertyID,
		Photos:       append([]string(nil), prop.Photos...),
		ThumbnailURL: prop.ThumbnailURL,
	}
	return &result, nil
}

var _ commands.Handler[UploadPropertyPhotoCommand, *dto.PhotoUploadResult] = (*UploadPropertyPhotoHandler)(nil)
