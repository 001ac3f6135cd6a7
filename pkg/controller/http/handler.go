package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/secmon-lab/zia/pkg/utils/errutil"
	"github.com/secmon-lab/zia/pkg/utils/safe"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type askResponse struct {
	Answer     string  `json:"answer"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Intent     string  `json:"intent"`
}

type teachResponse struct {
	Status   string  `json:"status"`
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Topic    *string `json:"topic"`
}

type importResponse struct {
	Status  string `json:"status"`
	Merged  int    `json:"merged"`
	Skipped int    `json:"skipped"`
	Invalid int    `json:"invalid"`
}

type knowledgeItem struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Topic      *string `json:"topic"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	CreatedAt  int64   `json:"created_at"`
}

type knowledgeListResponse struct {
	Knowledge []knowledgeItem `json:"knowledge"`
}

func topicOrNil(topic string) *string {
	if topic == "" {
		return nil
	}
	return &topic
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// handleError maps validation failures to 400 and everything else to 500
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, usecase.ErrValidation) {
		status = http.StatusBadRequest
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Message: HealthMessage})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, w, &req); err != nil {
		handleError(w, r, err)
		return
	}

	answer, err := s.uc.Ask.Ask(r.Context(), req.Question)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, askResponse{
		Answer:     answer.Text,
		Source:     answer.Source.String(),
		Confidence: answer.Confidence,
		Intent:     answer.Intent.String(),
	})
}

func (s *Server) handleTeach(w http.ResponseWriter, r *http.Request) {
	var req teachRequest
	if err := decodeJSON(r, w, &req); err != nil {
		handleError(w, r, err)
		return
	}

	input := usecase.TeachInput{Question: req.Question, Answer: req.Answer}
	if req.Topic != nil {
		input.Topic = *req.Topic
	}

	created, err := s.uc.Knowledge.Teach(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, teachResponse{
		Status:   "saved",
		ID:       created.ID.String(),
		Question: created.Question,
		Answer:   created.Answer,
		Topic:    topicOrNil(created.Topic),
	})
}

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	var (
		list []*model.Knowledge
		err  error
	)
	if r.URL.Query().Has("topic") {
		list, err = s.uc.Knowledge.ListByTopic(r.Context(), r.URL.Query().Get("topic"))
	} else {
		list, err = s.uc.Knowledge.List(r.Context())
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := knowledgeListResponse{Knowledge: make([]knowledgeItem, len(list))}
	for i, k := range list {
		resp.Knowledge[i] = knowledgeItem{
			ID:         k.ID.String(),
			Question:   k.Question,
			Answer:     k.Answer,
			Topic:      topicOrNil(k.Topic),
			Confidence: k.Confidence,
			Source:     k.Source.String(),
			CreatedAt:  k.CreatedAt.Unix(),
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.uc.Sync.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bundle)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeLenientJSON(r, w, &req); err != nil {
		handleError(w, r, err)
		return
	}

	packets, err := model.DecodePackets(req.Packets)
	if err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "'packets' must be a list", goerr.V("error", err.Error())))
		return
	}

	result, err := s.uc.Sync.Import(r.Context(), model.DeviceID(req.DeviceID), packets)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, importResponse{
		Status:  "ok",
		Merged:  result.Merged,
		Skipped: result.Skipped,
		Invalid: result.Invalid,
	})
}
