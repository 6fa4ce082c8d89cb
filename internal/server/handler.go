package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/littlejunkers/leadchat/internal/leadflow"
	"github.com/littlejunkers/leadchat/internal/transcript"
	"github.com/littlejunkers/leadchat/pkg/types"
)

// maxBodyBytes caps the request body. A full 50-turn transcript is a few
// kilobytes; a megabyte is generous headroom.
const maxBodyBytes = 1 << 20

// ChatRequest is the widget's turn payload: the full replayed transcript
// plus an optional lifecycle event.
type ChatRequest struct {
	Messages []types.Message `json:"messages"`
	Event    string          `json:"event,omitempty"`
}

// ChatResponse carries the assistant reply back to the widget.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// handleChat runs one chat turn: trim, analyze, decide, then act on the
// decision. Fixed-reply paths never touch the completion provider.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		// A malformed body is treated as an empty transcript rather than a
		// client error: the widget keeps the session alive and the reply is
		// the standard clarification.
		s.logger.Warn("malformed chat request", "error", err)
		req = ChatRequest{}
	}

	msgs := transcript.Trim(req.Messages, s.maxMessages, s.keepRecent)
	if len(msgs) < len(req.Messages) {
		s.logger.Warn("transcript trimmed",
			"received", len(req.Messages), "kept", len(msgs))
	}

	signals := s.analyzer.Analyze(msgs)
	counters := s.analyzer.CountAsks(msgs)
	prior := s.analyzer.AlreadyCaptured(msgs)

	d := leadflow.Decide(leadflow.Input{
		Signals:      signals,
		Counters:     counters,
		Transcript:   msgs,
		Event:        req.Event,
		PriorCapture: prior,
	})
	if s.metrics != nil {
		s.metrics.RecordDecision(ctx, d.Kind.String(), d.Rule)
	}
	s.logger.Info("decision", "kind", d.Kind.String(), "rule", d.Rule)

	replies := s.orch.Replies()

	switch d.Kind {
	case leadflow.KindBlocked:
		if s.metrics != nil {
			s.metrics.RecordSafetyBlock(ctx, string(d.Reason))
		}
		switch d.Reason {
		case leadflow.BlockSevere:
			writeReply(w, http.StatusOK, replies.SevereBlock)
		case leadflow.BlockRepeatedMild:
			writeReply(w, http.StatusOK, replies.RepeatedMild)
		default:
			writeReply(w, http.StatusOK, replies.MildOnce)
		}

	case leadflow.KindCloseCapture:
		lead, delivered := s.dispatcher.Lead(ctx, msgs)
		if !delivered {
			s.logger.Error("close-event lead lost", "lead_id", lead.ID)
			writeReply(w, http.StatusOK, replies.SoftFailure)
			return
		}
		writeReply(w, http.StatusOK, replies.CloseCaptured)

	case leadflow.KindEscalate:
		issue := transcript.LastUserMessage(msgs)
		if _, delivered := s.dispatcher.Escalate(ctx, msgs, issue); !delivered {
			writeReply(w, http.StatusOK, replies.SoftFailure)
			return
		}
		writeReply(w, http.StatusOK, replies.EscalationConfirm(d.Contact))

	case leadflow.KindNudge:
		if d.Nudge == leadflow.NudgeContactRepeat {
			writeReply(w, http.StatusOK, replies.NudgeRepeat)
			return
		}
		writeReply(w, http.StatusOK, replies.NudgeFirst)

	default: // KindContinue
		s.handleContinue(w, r, msgs, d, prior)
	}
}

// handleContinue covers the model path. A wrap-up turn with captured contact
// details short-circuits to a lead dispatch; everything else goes to the
// completion provider.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request, msgs []types.Message, d leadflow.Decision, prior bool) {
	ctx := r.Context()
	replies := s.orch.Replies()

	if d.Hints.EndOfChat && !prior {
		if _, delivered := s.dispatcher.Lead(ctx, msgs); !delivered {
			writeReply(w, http.StatusOK, replies.SoftFailure)
			return
		}
		writeReply(w, http.StatusOK, replies.LeadConfirmed)
		return
	}

	start := time.Now()
	reply, err := s.orch.Generate(ctx, msgs, d)
	if s.metrics != nil {
		s.metrics.CompletionDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordProviderRequest(ctx, s.provider, "completion", status)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordProviderError(ctx, s.provider, "completion")
		}
		s.logger.Error("completion failed", "error", err)
		writeReply(w, http.StatusInternalServerError, replies.GenericError)
		return
	}

	writeReply(w, http.StatusOK, reply)
}

func writeReply(w http.ResponseWriter, status int, reply string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ChatResponse{Reply: reply})
}
