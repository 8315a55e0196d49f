package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
)

const (
	ItemPhotoDir       = "transaction_items"
	DefaultMaxUploadMB = 10
	sniffLen           = 512
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Local keeps uploaded photos on disk under Root and hands back paths
// under PublicPrefix, which the static file server maps onto Root.
type Local struct {
	Root         string
	PublicPrefix string
	MaxBytes     int64
	logger       *zap.Logger
	now          func() time.Time
}

func NewLocal(root, publicPrefix string, maxUploadMB int64, logger *zap.Logger) *Local {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		Root:         root,
		PublicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		MaxBytes:     maxUploadMB << 20,
		logger:       logger.Named("storage"),
		now:          time.Now,
	}
}

// SaveItemPhoto stores an item photo as <unix>_<uuid>.<ext> and returns
// its public path. Only images up to MaxBytes are accepted.
func (l *Local) SaveItemPhoto(filename string, r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", apperrors.Validation(map[string]string{"file": "is required"})
	}

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperrors.Validation(map[string]string{"file": "must be an image"})
	}
	if orig := strings.ToLower(filepath.Ext(filename)); orig == ".jpeg" && ext == ".jpg" {
		ext = orig
	}

	dir := filepath.Join(l.Root, ItemPhotoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	name := fmt.Sprintf("%d_%s%s", l.now().Unix(), uuid.NewString(), ext)
	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", full, err)
	}

	// One byte past the limit tells an oversized upload apart from an exact fit.
	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(f, io.LimitReader(body, l.MaxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write %s: %w", full, err)
	}
	if written > l.MaxBytes {
		os.Remove(full)
		return "", apperrors.Validation(map[string]string{
			"file": fmt.Sprintf("may not be greater than %d kilobytes", l.MaxBytes>>10),
		})
	}

	l.logger.Info("item photo stored", zap.String("file", name), zap.Int64("bytes", written))
	return path.Join(l.PublicPrefix, ItemPhotoDir, name), nil
}
