package user

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Image is a stored binary image, currently only used for avatars.
type Image struct {
	ID    uuid.UUID `json:"id"`
	Bytes []byte    `json:"bytes"`
}

// CollectionName implements store.Record.
func (Image) CollectionName() string { return "images" }

// RecordID implements store.Record.
func (i Image) RecordID() uuid.UUID { return i.ID }

// NewImage wraps raw image bytes in a record with a fresh identity.
func NewImage(data []byte) Image {
	return Image{ID: uuid.New(), Bytes: data}
}

// maxAvatarBytes caps downloaded avatar size. Providers serve small profile
// pictures; anything larger is rejected.
const maxAvatarBytes = 4 << 20

func fetchAvatar(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("user: build avatar request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user: download avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user: download avatar: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("user: read avatar body: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("user: avatar exceeds %d bytes", maxAvatarBytes)
	}
	return data, nil
}
