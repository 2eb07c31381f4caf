package handler

import (
	"log"
	"net/http"

	"grievance-app/internal/services"

	"github.com/gin-gonic/gin"
)

// VoiceHandler принимает вебхуки Twilio (form-encoded: SpeechResult, CallSid)
// и отдает TwiML.
type VoiceHandler struct {
	ivr *services.IVRService
}

func NewVoiceHandler(ivr *services.IVRService) *VoiceHandler {
	return &VoiceHandler{ivr: ivr}
}

func (h *VoiceHandler) Voice(c *gin.Context) {
	doc, err := h.ivr.Greeting()
	h.respond(c, doc, err)
}

func (h *VoiceHandler) ProcessBeneficiary(c *gin.Context) {
	doc, err := h.ivr.ProcessBeneficiary(c.Request.Context(), c.PostForm("CallSid"), c.PostForm("SpeechResult"))
	h.respond(c, doc, err)
}

func (h *VoiceHandler) ProcessAccount(c *gin.Context) {
	doc, err := h.ivr.ProcessAccount(c.Request.Context(), c.PostForm("CallSid"), c.PostForm("SpeechResult"))
	h.respond(c, doc, err)
}

func (h *VoiceHandler) ProcessOption(c *gin.Context) {
	doc, err := h.ivr.ProcessOption(c.Request.Context(), c.PostForm("CallSid"), c.PostForm("SpeechResult"))
	h.respond(c, doc, err)
}

func (h *VoiceHandler) respond(c *gin.Context, doc string, err error) {
	if err != nil {
		log.Printf("Voice webhook failed: %v", err)
		c.String(http.StatusInternalServerError, "voice response failed")
		return
	}
	c.Data(http.StatusOK, "text/xml", []byte(doc))
}
