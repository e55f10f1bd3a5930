package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ZaguanLabs/agrivaani"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type textBody struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Text           string `json:"text"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

type speechResponse struct {
	AudioURL string `json:"audio_url"`
	Href     string `json:"href"`
	MIMEType string `json:"mime_type"`
	Bytes    int    `json:"bytes"`
}

type transcribeResponse struct {
	TranslatedText string `json:"translated_text"`
	RecognizedText string `json:"recognized_text,omitempty"`
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, agrivaani.ResultOf(agrivaani.Build(), nil))
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, agrivaani.ResultOf(agrivaani.Languages(), nil))
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	s.client.State().SetText(body.Text)
	translated, err := s.client.Translate(r.Context(), agrivaani.TranslationRequest{
		SourceLanguage: body.SourceLanguage,
		TargetLanguage: body.TargetLanguage,
		Text:           body.Text,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeResult(w, http.StatusOK, agrivaani.ResultOf(translateResponse{TranslatedText: translated}, nil))
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	blob, err := s.client.SynthesizeSpeech(r.Context(), agrivaani.SpeechRequest{
		SourceLanguage: body.SourceLanguage,
		TargetLanguage: body.TargetLanguage,
		Text:           body.Text,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeResult(w, http.StatusOK, agrivaani.ResultOf(speechResponse{
		AudioURL: blob.URL,
		Href:     "/api/audio/" + agrivaani.AudioURLID(blob.URL),
		MIMEType: blob.MIMEType,
		Bytes:    blob.Len(),
	}, nil))
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.client.State().AudioURLs().Resolve(chi.URLParam(r, "id"))
	if !ok {
		writeResult(w, http.StatusNotFound, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "audio not found"})
		return
	}

	w.Header().Set("Content-Type", blob.MIMEType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob.Reader()); err != nil {
		s.logger.Warn("writing audio", zap.Error(err))
	}
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state := s.client.State()

	if current := state.AudioURL(); current != "" && agrivaani.AudioURLID(current) == id {
		state.Close()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !state.AudioURLs().Revoke(id) {
		writeResult(w, http.StatusNotFound, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "audio not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeResult(w, http.StatusBadRequest, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "invalid form: " + err.Error()})
		return
	}

	req := agrivaani.TranscribeRequest{
		SourceLanguage: r.FormValue("source_language"),
		TargetLanguage: r.FormValue("target_language"),
	}

	file, header, err := r.FormFile("audio_file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// The client rejects the empty request without calling the backend.
	case err != nil:
		writeResult(w, http.StatusBadRequest, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "reading upload: " + err.Error()})
		return
	default:
		defer file.Close()
		req.Filename = header.Filename
		if req.Audio, err = io.ReadAll(file); err != nil {
			writeResult(w, http.StatusBadRequest, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "reading upload: " + err.Error()})
			return
		}
	}

	translated, err := s.client.TranscribeAndTranslate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeResult(w, http.StatusOK, agrivaani.ResultOf(transcribeResponse{
		TranslatedText: translated,
		RecognizedText: s.client.State().RecognizedText(),
	}, nil))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, agrivaani.ResultOf(s.client.BusyStates(), nil))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, agrivaani.ResultOf(s.client.State().Snapshot(), nil))
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, agrivaani.ResultOf(themeBody{Theme: string(s.client.State().Theme())}, nil))
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	var theme agrivaani.Theme
	if body.Theme == "toggle" {
		theme = s.client.State().Theme().Toggle()
	} else {
		var ok bool
		if theme, ok = agrivaani.ParseTheme(body.Theme); !ok {
			writeResult(w, http.StatusBadRequest, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "theme must be light, dark or toggle"})
			return
		}
	}

	if s.themes != nil {
		if err := s.themes.Save(theme); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.client.State().SetTheme(theme)

	writeResult(w, http.StatusOK, agrivaani.ResultOf(themeBody{Theme: string(theme)}, nil))
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeResult(w, http.StatusBadRequest, agrivaani.Result[any]{Kind: agrivaani.KindError, Message: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeResult(w, status, agrivaani.ResultOf[any](nil, err))
}

// statusFor maps client errors to HTTP status codes.
func statusFor(err error) int {
	var (
		busy        *agrivaani.BusyError
		missing     *agrivaani.MissingInputError
		unsupported *agrivaani.UnsupportedLanguageError
		remote      *agrivaani.RemoteServiceError
		decode      *agrivaani.DecodeError
	)
	switch {
	case errors.As(err, &busy):
		return http.StatusConflict
	case errors.As(err, &missing), errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &remote), errors.As(err, &decode):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeResult[T any](w http.ResponseWriter, status int, result agrivaani.Result[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
