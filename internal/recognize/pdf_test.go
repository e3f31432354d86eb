package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpandPassesImagesThrough(t *testing.T) {
	loader := NewPageLoader(2, zap.NewNop())

	jpegBody := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	pages, err := loader.Expand(jpegBody)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, jpegBody, pages[0])
}

func TestExpandRejectsBrokenPDF(t *testing.T) {
	loader := NewPageLoader(2, zap.NewNop())

	_, err := loader.Expand([]byte("%PDF-1.7 truncated garbage"))

	assert.Error(t, err)
}
