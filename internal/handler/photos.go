package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"leakbox/internal/session"
	"leakbox/internal/wizard"
)

const photoBodyLimit = 12 << 20

// PhotoHandler manages the photo collector step of a session.
type PhotoHandler struct {
	store *session.Store
}

func NewPhotoHandler(store *session.Store) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// Add handles POST /v1/sessions/{id}/photos. The body carries either the
// browser FileReader data URL or plain base64 bytes; the media type comes
// from content sniffing in both cases. Adding beyond the photo cap is a
// silent no-op, same as the client-side picker truncating its selection.
func (h *PhotoHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DataURL string `json:"dataUrl"`
		Data    string `json:"data"`
	}
	if err := decodeJSON(r, &body, photoBodyLimit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed photo body")
		return
	}
	img, err := decodePhotoBody(body.DataURL, body.Data)
	if err != nil {
		if errors.Is(err, wizard.ErrUnsupportedMediaType) {
			writeError(w, http.StatusUnsupportedMediaType, "이미지 파일만 업로드할 수 있습니다.")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.mutateAtPhotoStep(w, r, func(s *session.Session) error {
		s.Seq.Answers.AddPhoto(img)
		return nil
	})
}

func decodePhotoBody(dataURL, data string) (wizard.EncodedImage, error) {
	if dataURL != "" {
		return wizard.ParseDataURL(dataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return wizard.EncodedImage{}, errors.New("photo data is not valid base64")
	}
	return wizard.EncodePhoto(raw)
}

// Remove handles DELETE /v1/sessions/{id}/photos/{index}.
func (h *PhotoHandler) Remove(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be a number")
		return
	}
	h.mutateAtPhotoStep(w, r, func(s *session.Session) error {
		return s.Seq.Answers.RemovePhoto(idx)
	})
}

func (h *PhotoHandler) mutateAtPhotoStep(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	s, err := h.store.Update(mux.Vars(r)["id"], func(s *session.Session) error {
		if s.Seq.CurrentStep().Kind != wizard.StepPhotos {
			return &wizard.ValidationError{Msg: "사진 업로드 단계가 아닙니다."}
		}
		return fn(s)
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case isValidation(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}
