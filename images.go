package poptravel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

const (
	maxImageWidth  = 1200
	maxImageHeight = 800
	jpegQuality    = 80
	maxUploadSize  = 5 << 20 // 5 MiB
	uploadsSubdir  = "uploads"
)

var (
	// ErrNotAnImage rejects uploads whose declared MIME type is not image/*.
	ErrNotAnImage = errors.New("poptravel: upload is not an image")
	// ErrImageTooLarge rejects uploads over the size limit before any
	// decoding or caching happens.
	ErrImageTooLarge = fmt.Errorf("poptravel: image exceeds %d bytes", maxUploadSize)
)

// ValidateUpload enforces the ingestion preconditions: an image/* MIME type
// and a byte size within the limit. It runs before the file reaches the
// resizer or the library.
func ValidateUpload(mimeType string, size int64) error {
	if !strings.HasPrefix(mimeType, "image/") {
		return ErrNotAnImage
	}
	if size > maxUploadSize {
		return ErrImageTooLarge
	}
	return nil
}

// processImage decodes an image from src, downscales it into the bounding
// box if needed (preserving aspect ratio), and encodes it as JPEG. Returns
// the slugified filename and the encoded bytes.
func processImage(src io.Reader, originalName string) (string, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth || h > maxImageHeight {
		scaleW := float64(maxImageWidth) / float64(w)
		scaleH := float64(maxImageHeight) / float64(h)
		scale := scaleW
		if scaleH < scale {
			scale = scaleH
		}
		newW := int(float64(w) * scale)
		newH := int(float64(h) * scale)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return slugifyFilename(originalName) + ".jpg", buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	slug := Slugify(base)
	if slug == "" {
		slug = "image"
	}
	return slug
}

func (a *App) handleImageUpload(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if err := ValidateUpload(file.Header.Get("Content-Type"), file.Size); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	filename, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	filename = a.uniqueUploadName(filename)

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	url := "/public/" + uploadsSubdir + "/" + filename
	if _, err := a.Images.Save(file.Filename, "image/jpeg", int64(len(data)), url); err != nil {
		a.Log.Errorw("save image metadata", "name", file.Filename, "err", err)
		return a.renderImageGallery(c, "L'image n'a pas pu être enregistrée.")
	}
	return a.renderImageGallery(c, "")
}

// uniqueUploadName appends a counter while the candidate already exists in
// the uploads directory.
func (a *App) uniqueUploadName(filename string) string {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (a *App) handleImageDelete(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	id := c.Param("id")
	images, err := a.Images.List()
	if err == nil {
		for _, img := range images {
			if img.ID == id && strings.HasPrefix(img.URL, "/public/"+uploadsSubdir+"/") {
				// Best effort; the metadata removal below is what counts.
				_ = os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filepath.Base(img.URL)))
			}
		}
	}
	if _, err := a.Images.Delete(id); err != nil {
		a.Log.Errorw("delete image", "id", id, "err", err)
		return a.renderImageGallery(c, "La suppression a échoué.")
	}
	return a.renderImageGallery(c, "")
}

func (a *App) handleImageList(c echo.Context) error {
	if _, ok := CurrentPrincipal(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageGallery(c, "")
}

func (a *App) renderImageGallery(c echo.Context, message string) error {
	images, err := a.Images.List()
	if err != nil {
		a.Log.Errorw("list images", "err", err)
		images = nil
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	var total int64
	for _, img := range images {
		total += img.Size
	}
	return Render(c, a.Views.AdminImages(images, FormatSize(total), message, CsrfToken(c)))
}
