package images

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"sync"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the target size for BlurHash computation.
// A small thumbnail produces nearly identical results in milliseconds.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash string from an image file.
// Uses 4x3 components, about 20-30 characters.
func ComputeBlurHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales img down with nearest-neighbor sampling.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max(1, (srcHeight*blurHashSize)/srcWidth)
	} else {
		dstHeight = blurHashSize
		dstWidth = max(1, (srcWidth*blurHashSize)/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := range dstHeight {
		for x := range dstWidth {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}

// Inspector computes BlurHashes for images held in a Storage.
// Results are cached by name; stored images never change.
type Inspector struct {
	storage *Storage

	mu    sync.Mutex
	cache map[string]string
}

// NewInspector creates an inspector over storage.
func NewInspector(storage *Storage) *Inspector {
	return &Inspector{storage: storage, cache: make(map[string]string)}
}

// BlurHash returns the BlurHash of a /media image. Remote URLs yield "" and
// no error.
func (i *Inspector) BlurHash(imageURL string) (string, error) {
	name := NameFromURL(imageURL)
	if name == "" {
		return "", nil
	}

	i.mu.Lock()
	hash, ok := i.cache[name]
	i.mu.Unlock()
	if ok {
		return hash, nil
	}

	path, err := i.storage.Path(name)
	if err != nil {
		return "", err
	}
	hash, err = ComputeBlurHash(path)
	if err != nil {
		return "", err
	}

	i.mu.Lock()
	i.cache[name] = hash
	i.mu.Unlock()
	return hash, nil
}
