package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// MilkEntryRequest adds or removes a single ledger entry over HTTP. Weight is
// ignored on removal.
type MilkEntryRequest struct {
	FarmID string `json:"farm_id" binding:"required"`
	Date   string `json:"date" binding:"required"`
	Weight *int   `json:"weight"`
}

// CommandRequest carries a text command such as "/annual 2023".
type CommandRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommandReply is the rendered answer to a text command.
type CommandReply struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

// ArchiveRequest selects a report to render and store in the archive.
type ArchiveRequest struct {
	Kind   ReportKind `json:"kind" binding:"required"`
	FarmID string     `json:"farm_id"`
	Year   string     `json:"year"`
	Month  string     `json:"month"`
	Start  string     `json:"start"`
	End    string     `json:"end"`
}
