package poptravel

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrQuotaExceeded is returned by ImageCache.Save when adding a record would
// push the library past its configured size budget.
var ErrQuotaExceeded = errors.New("poptravel: image library quota exceeded")

// StoredImage is one entry of the local image library: the metadata of an
// uploaded image and its resolved URL. Its lifecycle is independent of
// content records.
type StoredImage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ImageCache persists the image library as one JSON-encoded list in a single
// named file slot. Writes that fail surface as errors instead of being
// swallowed, so callers can decide what the user sees.
type ImageCache struct {
	mu       sync.Mutex
	path     string
	maxTotal int64
}

// ImageCacheOption configures an ImageCache.
type ImageCacheOption func(*ImageCache)

// WithMaxTotalBytes caps the library's aggregate byte size; Save returns
// ErrQuotaExceeded once the cap would be crossed. Zero means unlimited.
func WithMaxTotalBytes(n int64) ImageCacheOption {
	return func(c *ImageCache) {
		c.maxTotal = n
	}
}

// NewImageCache creates an image library persisted at path.
func NewImageCache(path string, opts ...ImageCacheOption) *ImageCache {
	c := &ImageCache{path: path}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save constructs a StoredImage with a fresh identifier and the current
// timestamp, appends it to the library, and persists. The record is returned
// only when the write succeeded.
func (c *ImageCache) Save(name, mimeType string, size int64, url string) (StoredImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	images, err := c.load()
	if err != nil {
		return StoredImage{}, err
	}
	if c.maxTotal > 0 && totalSize(images)+size > c.maxTotal {
		return StoredImage{}, ErrQuotaExceeded
	}
	img := StoredImage{
		ID:         newImageID(),
		Name:       name,
		URL:        url,
		Size:       size,
		Type:       mimeType,
		UploadedAt: time.Now().UTC(),
	}
	images = append(images, img)
	if err := c.persist(images); err != nil {
		return StoredImage{}, fmt.Errorf("persist image library: %w", err)
	}
	return img, nil
}

// List returns all stored images. Order is not part of the contract; the
// admin gallery sorts by upload time descending itself.
func (c *ImageCache) List() ([]StoredImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Delete removes an image by identifier and reports whether a matching
// record was found.
func (c *ImageCache) Delete(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	images, err := c.load()
	if err != nil {
		return false, err
	}
	kept := images[:0]
	found := false
	for _, img := range images {
		if img.ID == id {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return false, nil
	}
	if err := c.persist(kept); err != nil {
		return false, fmt.Errorf("persist image library: %w", err)
	}
	return true, nil
}

// TotalSize returns the sum of byte sizes across all stored images.
func (c *ImageCache) TotalSize() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	images, err := c.load()
	if err != nil {
		return 0, err
	}
	return totalSize(images), nil
}

func totalSize(images []StoredImage) int64 {
	var total int64
	for _, img := range images {
		total += img.Size
	}
	return total
}

func (c *ImageCache) load() ([]StoredImage, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image library: %w", err)
	}
	var images []StoredImage
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("decode image library: %w", err)
	}
	return images, nil
}

func (c *ImageCache) persist(images []StoredImage) error {
	if images == nil {
		images = []StoredImage{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// newImageID yields a time-ordered identifier with a random suffix, unique
// within the library.
func newImageID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(buf)
}

// FormatSize renders a byte count as a human-readable magnitude using
// base-1024 scaling with up to two decimal places.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i < 0 {
		i = 0
	}
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + units[i]
}
