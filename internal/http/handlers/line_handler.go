// README: LINE webhook handler; acks immediately and replies asynchronously.
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"teaw/internal/modules/chat"
)

// turnTimeout bounds one conversation turn including the pipeline fan-out.
const turnTimeout = 60 * time.Second

type ChatService interface {
	HandleText(ctx context.Context, userID, text string) chat.Reply
}

type LineHandler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	chat          ChatService
	wg            sync.WaitGroup
}

func NewLineHandler(channelSecret, channelToken string, chatSvc ChatService) (*LineHandler, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, err
	}
	return &LineHandler{
		channelSecret: channelSecret,
		client:        client,
		chat:          chatSvc,
	}, nil
}

// Webhook handles POST /webhook. LINE expects a prompt 200; events are
// processed after the response is written.
func (h *LineHandler) Webhook(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			c.Status(http.StatusBadRequest)
		} else {
			log.Printf("line: parse webhook: %v", err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)

	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("line: panic in event processing: %v", r)
			}
		}()
		for _, event := range events {
			h.processEvent(event)
		}
	}()
}

// Wait blocks until in-flight event processing finishes. Used on shutdown.
func (h *LineHandler) Wait() {
	h.wg.Wait()
}

func (h *LineHandler) processEvent(event webhook.EventInterface) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	switch e := event.(type) {
	case webhook.MessageEvent:
		textMsg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return
		}
		h.respond(ctx, e.ReplyToken, userIDFromSource(e.Source), textMsg.Text)
	case webhook.PostbackEvent:
		// Postback payloads carry the same text the quick replies would send.
		h.respond(ctx, e.ReplyToken, userIDFromSource(e.Source), e.Postback.Data)
	case webhook.FollowEvent:
		h.respond(ctx, e.ReplyToken, userIDFromSource(e.Source), "สวัสดี")
	}
}

func (h *LineHandler) respond(ctx context.Context, replyToken, userID, text string) {
	if replyToken == "" || userID == "" || text == "" {
		return
	}
	reply := h.chat.HandleText(ctx, userID, text)
	if reply.Text == "" {
		return
	}

	msg := &messaging_api.TextMessage{Text: reply.Text}
	if len(reply.Actions) > 0 {
		var items []messaging_api.QuickReplyItem
		for _, a := range reply.Actions {
			items = append(items, messaging_api.QuickReplyItem{
				Action: &messaging_api.MessageAction{Label: a.Label, Text: a.Text},
			})
		}
		msg.QuickReply = &messaging_api.QuickReply{Items: items}
	}

	if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{msg},
	}); err != nil {
		log.Printf("line: reply to %s: %v", userID, err)
	}
}

func userIDFromSource(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	default:
		return ""
	}
}
