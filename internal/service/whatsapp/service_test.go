package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/milkledger/internal/config"
	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/service/commands"
	client "github.com/mamadbah2/milkledger/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type fakeDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

func payloadWith(messages ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{Field: "messages", Value: models.WebhookValue{Messages: messages}}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "tok"}, &fakeClient{}, &fakeDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "tok", "42")
	require.NoError(t, err)
	require.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	require.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "tok", "42")
	require.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	require.Error(t, err)
}

func TestHandleWebhookRepliesWithDispatcherOutput(t *testing.T) {
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "Annual report 2023:\nTOTAL: 0 lbs"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, dispatcher, nil)

	err := svc.HandleWebhook(context.Background(), payloadWith(models.InboundMessage{
		From: "221700000000", ID: "wamid.1", Type: "text", Text: &models.TextContent{Body: "/annual 2023"},
	}))
	require.NoError(t, err)

	require.Len(t, dispatcher.got, 1)
	require.Equal(t, models.CommandAnnual, dispatcher.got[0].Type)
	require.Equal(t, []client.SendTextMessageRequest{{To: "221700000000", Body: dispatcher.reply}}, wa.sent)
}

func TestHandleWebhookRepliesWithErrorText(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{err: models.ErrFarmNotFound}, nil)

	err := svc.HandleWebhook(context.Background(), payloadWith(models.InboundMessage{
		From: "1", Type: "interactive",
		Interactive: &models.InteractiveContent{ButtonReply: &models.ReplyItem{ID: "/farm FarmZ 2023"}},
	}))
	require.NoError(t, err)
	require.Len(t, wa.sent, 1)
	require.Equal(t, commands.ReplyForError(models.ErrFarmNotFound), wa.sent[0].Body)
}

func TestHandleWebhookIgnoresNonText(t *testing.T) {
	wa := &fakeClient{}
	dispatcher := &fakeDispatcher{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, dispatcher, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadWith(models.InboundMessage{From: "1", Type: "image"})))
	require.NoError(t, svc.HandleWebhook(context.Background(), models.WebhookPayload{}))
	require.Empty(t, dispatcher.got)
	require.Empty(t, wa.sent)
}

func TestHandleWebhookSendFailure(t *testing.T) {
	wa := &fakeClient{err: errors.New("network down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{reply: "ok"}, nil)

	err := svc.HandleWebhook(context.Background(), payloadWith(
		models.InboundMessage{From: "1", Text: &models.TextContent{Body: "/farms"}},
		models.InboundMessage{From: "2", Text: &models.TextContent{Body: "/years"}},
	))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reply to 1")
}

func TestSendOutbound(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{}, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "9", Message: "hello", PreviewURL: true}))
	require.Equal(t, []client.SendTextMessageRequest{{To: "9", Body: "hello", PreviewURL: true}}, wa.sent)
}
