package dto

// ChatTurn is one turn of the career chat history sent by the client.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// CareerChatRequest streams an assistant reply for the given history.
type CareerChatRequest struct {
	Messages []ChatTurn `json:"messages" validate:"required,min=1,dive"`
}
