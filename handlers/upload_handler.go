package handlers

import (
	"errors"
	"net/http"

	"github.com/arenastack/tournament-registration/storage"
)

// maxProofSize ограничивает размер скриншота оплаты.
const maxProofSize = 5 << 20 // 5MB

type UploadHandler struct {
	proofStore storage.PaymentProofStore
}

func NewUploadHandler(proofStore storage.PaymentProofStore) *UploadHandler {
	return &UploadHandler{proofStore: proofStore}
}

// UploadPaymentProof принимает multipart-поле "file" и возвращает ключ
// объекта. Ядро регистрации хранит только этот ключ.
func (h *UploadHandler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	if h.proofStore == nil {
		errorResponse(w, r, http.StatusServiceUnavailable, "payment proof uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofSize)
	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		badRequestResponse(w, r, errors.New("payment proof must be an image up to 5MB"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	result, err := h.proofStore.UploadProof(r.Context(), contentType, file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			badRequestResponse(w, r, err)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{
		"key": result.Key,
		"url": result.URL,
	}, nil)
}
