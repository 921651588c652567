package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 32 << 20

type IngestHandler struct {
	ingester *ingest.Ingester
}

func NewIngestHandler(ingester *ingest.Ingester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

// Upload ingests POS export files posted as multipart "files". Files are
// parsed in parallel and written before the response is sent.
func (h *IngestHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		badRequest(c, "no files provided")
		return
	}

	sources := make([]ingest.Source, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("failed to read uploaded file")
			badRequest(c, fmt.Sprintf("could not read %s", fh.Filename))
			return
		}
		sources = append(sources, ingest.BytesSource(fh.Filename, data))
	}

	results, err := h.ingester.IngestAll(c.Request.Context(), sources)
	if err != nil {
		respondError(c, "ingest uploads", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "files": results})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
