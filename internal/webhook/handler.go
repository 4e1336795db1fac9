package webhook

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leadflow_backend/internal/intake"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
)

// Dispatcher consumes inbound events. Implemented by the intake orchestrator.
type Dispatcher interface {
	HandleEvent(ctx context.Context, ev intake.InboundEvent)
}

// mediaPayload is a non-text attachment. The gateway includes one object per
// media kind; presence sets the media flag and the caption can stand in for
// missing message text.
type mediaPayload struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
}

// inboundPayload is the gateway's message webhook body.
type inboundPayload struct {
	From     string `json:"from"`
	PushName string `json:"pushname"`
	FromMe   bool   `json:"from_me"`
	Message  struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
	Image    *mediaPayload `json:"image,omitempty"`
	Video    *mediaPayload `json:"video,omitempty"`
	Audio    *mediaPayload `json:"audio,omitempty"`
	Document *mediaPayload `json:"document,omitempty"`
	Sticker  *mediaPayload `json:"sticker,omitempty"`
}

// Handler receives gateway callbacks and hands them to the intake pipeline.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewHandler(dispatcher Dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, log: log}
}

// HandleMessage accepts one inbound message callback. The gateway expects a
// fast acknowledgement, so the pipeline runs on its own goroutine and the
// request returns 202 immediately.
func (h *Handler) HandleMessage(c *gin.Context) {
	var payload inboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if payload.From == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing sender address", nil)
		return
	}

	ev := toInboundEvent(payload)
	h.log.Debug("inbound message accepted", "from", payload.From, "has_media", ev.HasMedia)

	// The request context dies with the 202; the pipeline gets its own.
	go h.dispatcher.HandleEvent(context.Background(), ev)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func toInboundEvent(payload inboundPayload) intake.InboundEvent {
	return intake.InboundEvent{
		SourceAddress: payload.From,
		PushName:      payload.PushName,
		Text:          messageText(payload),
		HasMedia:      hasMedia(payload),
		EventRef:      payload.Message.ID,
		IsFromSelf:    payload.FromMe,
		IsBroadcast:   isBroadcast(payload.From),
	}
}

// messageText extracts the textual content of the event. A captioned media
// message carries its text in the caption, not in message.text.
func messageText(payload inboundPayload) string {
	if payload.Message.Text != "" {
		return payload.Message.Text
	}
	for _, media := range mediaParts(payload) {
		if media != nil && media.Caption != "" {
			return media.Caption
		}
	}
	return ""
}

func hasMedia(payload inboundPayload) bool {
	for _, media := range mediaParts(payload) {
		if media != nil {
			return true
		}
	}
	return false
}

func mediaParts(payload inboundPayload) []*mediaPayload {
	return []*mediaPayload{payload.Image, payload.Video, payload.Audio, payload.Document, payload.Sticker}
}

// isBroadcast recognizes status-feed and broadcast-list addresses.
func isBroadcast(from string) bool {
	return strings.Contains(from, "@broadcast") || strings.Contains(from, "@newsletter")
}
