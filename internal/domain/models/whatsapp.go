package models

// WebhookPayload is the subset of Meta's WhatsApp Cloud API webhook body that
// carries inbound text commands.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

// WebhookValue holds the messages of one change notification. Delivery
// statuses arrive here too and are ignored.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is a message sent by a farm operator.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent represents button/list replies; the reply id carries the
// command text.
type InteractiveContent struct {
	Type        string     `json:"type"`
	ButtonReply *ReplyItem `json:"button_reply,omitempty"`
	ListReply   *ReplyItem `json:"list_reply,omitempty"`
}

type ReplyItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
