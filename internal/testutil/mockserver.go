package testutil

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilkin0/bomprobe/internal/api/types"
	"github.com/ilkin0/bomprobe/internal/crypto"
	"github.com/ilkin0/bomprobe/internal/logger"
	"github.com/ilkin0/bomprobe/internal/utils"
)

const (
	EndpointPath = "/get_kicad_project_bom_and_ports"
	// FileField is the form field the extraction service reads the archive from.
	FileField = "file"

	maxUploadSize = 50 << 20
)

// Upload is one file part received by the mock endpoint.
type Upload struct {
	RequestID   string
	Field       string
	Filename    string
	ContentType string
	Data        []byte
	Hash        string
}

// Responder writes the reply for a request whose "file" part was found.
type Responder func(w http.ResponseWriter, r *http.Request, up Upload)

// MockServer stands in for the KiCad BOM/ports extraction service.
type MockServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  int
	uploads   []Upload
	responder Responder
}

func NewMockServer(t *testing.T, responder Responder) *MockServer {
	t.Helper()

	if responder == nil {
		responder = RespondReport(SampleReport())
	}

	m := &MockServer{responder: responder}

	r := chi.NewRouter()
	r.Use(logger.RequestID)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Post(EndpointPath, m.handleUpload)
	r.Get("/feed", func(w http.ResponseWriter, r *http.Request) {
		utils.Ok(w, map[string]string{"msg": "Hello World"})
	})

	m.Server = httptest.NewServer(r)
	t.Cleanup(m.Close)

	return m
}

func (m *MockServer) EndpointURL() string {
	return m.URL + EndpointPath
}

// Requests counts every request that reached the upload route.
func (m *MockServer) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func (m *MockServer) Uploads() []Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Upload(nil), m.uploads...)
}

func (m *MockServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()

	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	received, err := readParts(r)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	m.mu.Lock()
	m.uploads = append(m.uploads, received...)
	m.mu.Unlock()

	for _, up := range received {
		if up.Field == FileField {
			log.Info("archive received",
				slog.String("filename", up.Filename),
				slog.Int("size", len(up.Data)),
				slog.String("sha256", up.Hash),
			)
			m.responder(w, r, up)
			return
		}
	}

	utils.Error(w, http.StatusBadRequest, "No file uploaded")
}

func readParts(r *http.Request) ([]Upload, error) {
	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var received []Upload
	for _, field := range fields {
		for _, header := range r.MultipartForm.File[field] {
			file, err := header.Open()
			if err != nil {
				return nil, err
			}
			data, err := readAllAndClose(file)
			if err != nil {
				return nil, err
			}

			received = append(received, Upload{
				RequestID:   logger.RequestIDFromContext(r.Context()),
				Field:       field,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
				Hash:        crypto.HashBytes(data),
			})
		}
	}

	return received, nil
}

// SampleReport is a small but realistic extraction result.
func SampleReport() types.ProjectReport {
	return types.ProjectReport{
		Bom: []types.BomGroup{
			{
				Name:        "10k",
				Footprint:   "Resistor_SMD:R_0402_1005Metric",
				Datasheet:   "~",
				Description: "Resistor",
				Quantity:    2,
				Designators: []string{"R1", "R2"},
			},
			{
				Name:        "AMS1117-3.3",
				Footprint:   "Package_TO_SOT_SMD:SOT-223-3_TabPin2",
				Datasheet:   "http://www.advanced-monolithic.com/pdf/ds1117.pdf",
				Description: "1A Low Dropout regulator, positive, 3.3V fixed output",
				Quantity:    1,
				Designators: []string{"U1"},
			},
		},
		Ports: types.Ports{
			HierarchyLabels: []string{"VIN", "EN"},
			GlobalPwrPorts:  []string{"+3V3", "GND"},
		},
	}
}
