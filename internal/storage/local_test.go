package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocal_SaveItemPhoto(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, "storage/", 1, nil)
	l.now = func() time.Time { return time.Unix(1705309200, 0) }

	t.Run("stores a png", func(t *testing.T) {
		data := pngBytes(t)

		public, err := l.SaveItemPhoto("laptop.png", bytes.NewReader(data))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(public, "/storage/transaction_items/1705309200_"))
		assert.True(t, strings.HasSuffix(public, ".png"))

		stored, err := os.ReadFile(filepath.Join(root, ItemPhotoDir, filepath.Base(public)))
		require.NoError(t, err)
		assert.Equal(t, data, stored)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := l.SaveItemPhoto("notes.txt", strings.NewReader("just some text"))
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("rejects empty uploads", func(t *testing.T) {
		_, err := l.SaveItemPhoto("empty.png", strings.NewReader(""))
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("rejects oversized uploads", func(t *testing.T) {
		big := append(pngBytes(t), bytes.Repeat([]byte{0}, 1<<20)...)

		_, err := l.SaveItemPhoto("big.png", bytes.NewReader(big))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

		entries, err := os.ReadDir(filepath.Join(root, ItemPhotoDir))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
