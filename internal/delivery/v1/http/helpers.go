package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const maxJSONBodySize = 1 << 20

// ErrorResponse: тело любого ответа с ошибкой. Errors заполняется только при ошибке валидации.
type ErrorResponse struct {
	Message   string            `json:"message" example:"Product not found with id: 42"`
	Status    int               `json:"status" example:"404"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func NewErrorResponse(code int, message string, fields map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Message:   message,
		Status:    code,
		Timestamp: time.Now().UTC(),
		Errors:    fields,
	}
}

// ToHTTPResponse сопоставляет ошибку со статусом и сообщением для клиента.
// Неизвестные ошибки превращаются в 500 без подробностей.
func ToHTTPResponse(err error) (int, string, map[string]string) {
	if v, ok := e.AsValidation(err); ok {
		return http.StatusBadRequest, "Validation failed", v.Fields
	}
	if nf, ok := e.AsNotFound(err); ok {
		return http.StatusNotFound, nf.Error(), nil
	}
	if s, ok := e.AsInsufficientStock(err); ok {
		return http.StatusBadRequest, s.Error(), nil
	}

	switch {
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error(), nil
	case errors.Is(err, e.ErrOrderNotFound):
		return http.StatusNotFound, e.ErrOrderNotFound.Error(), nil
	case errors.Is(err, e.ErrInvalidJSON):
		return http.StatusBadRequest, e.ErrInvalidJSON.Error(), nil
	case errors.Is(err, e.ErrInvalidID):
		return http.StatusBadRequest, e.ErrInvalidID.Error(), nil
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error(), nil
	case errors.Is(err, e.ErrNoImages):
		return http.StatusBadRequest, e.ErrNoImages.Error(), nil
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error(), nil
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error(), nil
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error(), nil
	case errors.Is(err, e.ErrProductAlreadyExists):
		return http.StatusConflict, e.ErrProductAlreadyExists.Error(), nil
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error(), nil
	}
}

// WriteError пишет ошибку клиенту и логирует её: 4xx как Warn, 5xx как Error.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	code, msg, fields := ToHTTPResponse(err)

	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%s %s: %d", r.Method, r.URL.Path, code)
	} else {
		log.Warnf("%s %s: %d %v", r.Method, r.URL.Path, code, err)
	}

	WriteSuccess(w, code, NewErrorResponse(code, msg, fields))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Пустое или битое тело даёт e.ErrInvalidJSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrInvalidJSON, err))
	}

	return nil
}

// pathID разбирает положительный числовой параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(fmt.Sprintf("%s=%q", name, raw), e.ErrInvalidID)
	}

	return id, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err))
	}
	return nil
}

// readFile читает загруженный файл и определяет его MIME-тип по содержимому.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if maxSize > 0 && fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	// DetectContentType не распознаёт SVG, доверяем заявленному типу
	if declared := fh.Header.Get("Content-Type"); declared == "image/svg+xml" && strings.HasPrefix(mimeType, "text/") {
		mimeType = declared
	}

	return data, mimeType, nil
}
